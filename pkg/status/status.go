// Package status publishes board snapshots for monitoring.
package status

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/tictac.go/pkg/game"
)

// BoardStatus is the snapshot of a board.
type BoardStatus struct {
	ID       string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Phase    string `protobuf:"bytes,2,opt,name=phase,proto3" json:"phase,omitempty"`
	Player   string `protobuf:"bytes,3,opt,name=player,proto3" json:"player,omitempty"`
	Grid     string `protobuf:"bytes,4,opt,name=grid,proto3" json:"grid,omitempty"`
	CursorX  uint32 `protobuf:"varint,5,opt,name=cursor_x,proto3" json:"cursor_x,omitempty"`
	CursorY  uint32 `protobuf:"varint,6,opt,name=cursor_y,proto3" json:"cursor_y,omitempty"`
	MyTurn   bool   `protobuf:"varint,7,opt,name=my_turn,proto3" json:"my_turn,omitempty"`
	GameOver bool   `protobuf:"varint,8,opt,name=game_over,proto3" json:"game_over,omitempty"`
	// Time is in unix milliseconds.
	Time int64 `protobuf:"varint,9,opt,name=time,proto3" json:"time,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *BoardStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BoardStatus) Reset() { *m = BoardStatus{} }

// String implements proto.Message.
func (m *BoardStatus) String() string { return proto.CompactTextString(m) }

// FromBoard creates the status of board id.
func FromBoard(id string, b game.Board, now time.Time) *BoardStatus {
	s := &BoardStatus{
		ID:       id,
		Phase:    b.Phase.String(),
		Grid:     b.Grid.String(),
		CursorX:  uint32(b.Cursor.X),
		CursorY:  uint32(b.Cursor.Y),
		MyTurn:   b.MyTurn,
		GameOver: b.GameOver,
		Time:     now.UnixNano() / int64(time.Millisecond),
	}
	if b.Player.IsMarker() {
		s.Player = b.Player.String()
	}
	return s
}

// Board reconstructs the grid.
func (m *BoardStatus) Board() game.Grid {
	return game.ParseGrid(m.Grid)
}

// Encode encodes the status.
func (m *BoardStatus) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode decodes a status.
func Decode(data []byte) (*BoardStatus, error) {
	m := &BoardStatus{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
