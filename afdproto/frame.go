package afdproto

import "bytes"

// SplitMessages splits buf into complete protocol messages.
//
// On the wire each message is terminated by CRLF (spec §6.1). The
// client's framing layer treats the CR as the message terminator (spec
// §4.3 "Record boundary": "a message ends at NUL ... the remote frames
// messages with CRLF but writes NUL after CR" - i.e. the CR byte is
// overwritten with NUL by the framing layer, so the message is
// considered to end at that NUL and the next one resumes two bytes
// later, past the LF). This function has the same externally observable
// effect without requiring callers to mutate their read buffer in place:
// it scans for "\r\n", yields everything before the "\r" as one message,
// and continues scanning after the "\n".
//
// The returned rest is the trailing partial message (if the buffer did
// not end on a message boundary) and must be prefixed to the next read.
func SplitMessages(buf []byte) (messages [][]byte, rest []byte) {
	for {
		idx := bytes.Index(buf, []byte{'\r', '\n'})
		if idx < 0 {
			return messages, buf
		}
		messages = append(messages, buf[:idx])
		buf = buf[idx+2:]
	}
}
