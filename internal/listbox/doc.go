// Package listbox implements the interaction logic of a dropdown listbox:
// a button that opens a popover of options, driven by pointer, keyboard and
// drag input.
//
// The behaviour is an explicit statechart (NewChart) interpreted by a
// Machine. Guards and actions are looked up by name from registries, so a
// host can replace any of them, and the chart is checked against the
// registries when the machine is built unless the binary is compiled with
// the production build tag.
//
// Rendering is left to the host. The host translates raw input into the
// event vocabulary, passes handles to its focusable surfaces through Env,
// and re-renders from the Snapshot delivered to subscribers.
package listbox
