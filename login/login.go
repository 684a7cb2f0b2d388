// Package login manages starting micmute when the user logs in.
package login

const appID = "micmute"
