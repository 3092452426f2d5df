//go:build !production

package listbox

const devChecks = true
