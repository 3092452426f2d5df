//go:build production

package listbox

const devChecks = false
