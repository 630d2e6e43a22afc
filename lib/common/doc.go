// Package common contains the pieces shared by every dcodec package: the
// codec failure type, the logger factory and the tool configuration.
//
// Error handling:
//
//	Every failure of the codec layer is reported as *Error. Its Kind tells
//	encoding, decoding and release failures apart, Cause holds the original
//	error (wrapped with github.com/pkg/errors for a stack trace) and CloseErr
//	collects failures that happened while closing compression wrappers. A
//	release failure is recorded next to an earlier failure, never instead of it:
//
//	  v, err := s.Deserialize(data)
//	  if common.IsDecodingError(err) {
//	      // malformed stream, unknown type tag, ...
//	  }
//
// Logging:
//
//	Loggers implement dragonboat's logger.ILogger. InitLoggers installs the
//	custom factory and configures the level of the serializer, codec,
//	protocol and cli loggers. Output goes to stderr so encoded data written
//	to stdout stays clean.
package common
