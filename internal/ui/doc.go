// Package ui contains the Bubble Tea program that hosts a listbox machine in
// the terminal. The Model owns no interaction logic of its own: it translates
// input into listbox events and renders whatever the machine has committed.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry (keys, mouse, resize, backend events,
//     action results).
//   - Key presses are matched against a bubbles KeyMap and sent as keyboard
//     events. Mouse messages are hit-tested against the same layout View
//     draws, producing button, item and pointer-move events; every release
//     is also delivered to the document listener the machine attached.
//   - Transitions can also happen off the Bubble Tea goroutine when a delay
//     fires. Their side effects (redraws, committed options, submits, errors)
//     land in a mailbox that Update drains after every message.
//
// Surfaces:
//   - The button, the listbox and one surface per option implement
//     listbox.Handle. Focus requests from the machine move a shared focus
//     ring, which View reads to style the focused surface.
//   - Options live in a listbox.Collection. Backend refreshes rebuild it in a
//     single batch, keeping each option's token and surface stable.
//
// Committed options run their source action through the command bus; the
// resulting menu.ActionResult decides whether the program exits.
package ui
