// Package logger provides structured logging for keyforge on top of
// log/slog.
//
// All loggers share one level, so SetLevel takes effect everywhere.
// String attributes are filtered by key before they are written:
//
//   - keys ending in _id, _hint, _part or _length are written as is
//   - keys containing token, api_key or apikey keep a hint ("GCbu...QAWm")
//   - keys containing secret, master, salt, password, passphrase,
//     credential, bearer or key are replaced with ***REDACTED***
package logger
