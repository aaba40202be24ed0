// Package control turns user input into population commands.
//
// [Manual] is edge triggered: holding a key issues its command once, on
// the frame the key goes down. Windowed viewers feed it a polled
// [Input] every frame; terminal viewers receive discrete key events and
// look them up in [TerminalKeys] instead.
package control
