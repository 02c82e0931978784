// Package cooldown implements the OTP resend cooldown: a per-key timer that blocks a
// repeated action until it elapses.
//
// # Key layout
//
// Keys are "<purpose>:<email>" with the email lowercased. The Redis backend prefixes
// them with "thc:" and stores them with a PX expiry equal to the cooldown, so the timer
// survives process restarts of short-lived CLI invocations.
package cooldown
