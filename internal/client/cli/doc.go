// Package cli provides the interactive ShopSage terminal client.
//
// It wires configuration, the durable key-value store, the session and
// history stores, and a mock product search into a REPL. The REPL blocks
// until the user exits; see App.Run and runREPL.
//
// Commands:
//   - register / login / logout / whoami
//   - search <query...>   (requires a signed-in user)
//   - history / remove <id> / clear
package cli
