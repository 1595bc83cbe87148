package peer

import "context"

// FrameReader reads frame payloads.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameWriter writes frame payloads. WriteFrame returns only after the
// transport accepted the whole frame.
type FrameWriter interface {
	WriteFrame([]byte) error
}

// FrameReadWriter reads/writes frame payloads.
type FrameReadWriter interface {
	FrameReader
	FrameWriter
}

// MessageHandler processes a decoded inbound message.
type MessageHandler interface {
	HandleMessage(context.Context, Message) error
}

// HandleMessageFunc is the func form of MessageHandler.
type HandleMessageFunc func(context.Context, Message) error

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Sender sends messages to the peer.
type Sender interface {
	Send(Message) error
}
