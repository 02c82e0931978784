// Package internal holds the building blocks behind the public techhatch API.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - cli: the techhatch command tree
//   - cooldown: per purpose and email OTP resend timers, in memory or redis
//   - flows: the auth state machine and the flow orchestrators driving it
//   - logging: slog construction from config
//
// Nothing here is imported from outside the module.
package internal
