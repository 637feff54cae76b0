// Package cli provides the interactive EmergQR companion.
//
// It wires configuration, local storage, the REST client, the connectivity
// monitor and the session, then runs a REPL whose command set follows the
// navigation tree chosen by the gate:
//
//	auth     register, login
//	app      profile, qr [regenerate], avatar <path>, passwd, logout, status
//	offline  qr (saved copy), logout, status
//
// help and exit work everywhere. A banner is printed whenever connectivity
// drops or comes back.
package cli
