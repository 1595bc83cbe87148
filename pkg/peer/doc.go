// Package peer provides the board-to-board protocol support.
package peer

// The peer protocol keeps the logical grids of two boards consistent.
// Every message is a short ASCII frame whose first byte is the tag:
//
//	A        sender chose X
//	B        sender chose O
//	P x y m  placement of marker m at column x, row y ('0'..'2')
//	R        full reset
//	G m      sender's evaluator reported a win for m
//	D        sender's evaluator reported a draw
//
// On byte streams (e.g. serial port) each frame is terminated by a single
// zero byte. The protocol has no sequence numbers, acknowledgements or
// retries: delivery in order and without loss is assumed from the transport.
