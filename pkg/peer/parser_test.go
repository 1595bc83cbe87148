package peer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parserTestSequence struct {
	in     []byte
	expect ParseResult
}

type parserTestSequenceBuilder struct {
	seq []parserTestSequence
}

func parserTestSequences() *parserTestSequenceBuilder {
	return &parserTestSequenceBuilder{}
}

func (b *parserTestSequenceBuilder) on(in string) *parserTestSequenceBuilder {
	b.seq = append(b.seq, parserTestSequence{in: []byte(in)})
	return b
}

func (b *parserTestSequenceBuilder) frame(payload string) *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].expect = ParseResult{Frame: []byte(payload), Ready: true}
	return b
}

func (b *parserTestSequenceBuilder) truncated(payload string) *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].expect = ParseResult{Frame: []byte(payload), Ready: true, Truncated: true}
	return b
}

func (b *parserTestSequenceBuilder) build() []parserTestSequence {
	return b.seq
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name string
		seq  []parserTestSequence
	}{
		{
			name: "single frames",
			seq: parserTestSequences().
				on("A\x00").frame("A").
				on("P11X\x00").frame("P11X").
				on("GO\x00").frame("GO").
				build(),
		},
		{
			name: "partial",
			seq: parserTestSequences().
				on("P1").
				on("1X").
				on("\x00").frame("P11X").
				build(),
		},
		{
			name: "empty frame",
			seq: parserTestSequences().
				on("\x00").frame("").
				on("R\x00").frame("R").
				build(),
		},
		{
			name: "overflow discarded",
			seq: parserTestSequences().
				on("0123456789ABC\x00").truncated("012345678").
				on("D\x00").frame("D").
				build(),
		},
		{
			name: "exact capacity",
			seq: parserTestSequences().
				on("012345678\x00").frame("012345678").
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			for n, s := range tc.seq {
				var pr ParseResult
				for i, b := range s.in {
					pr = parser.Parse(b)
					if i+1 < len(s.in) {
						require.Falsef(t, pr.Ready, "seq[%d][%d] unexpected frame", n, i)
					}
				}
				require.Equalf(t, s.expect, pr, "seq[%d] final mismatch", n)
			}
		})
	}
}

func TestParserReset(t *testing.T) {
	var parser Parser
	parser.Parse('P')
	parser.Parse('1')
	require.Equal(t, 2, parser.Pending())
	parser.Reset()
	require.Equal(t, 0, parser.Pending())
	require.Equal(t, ParseResult{Frame: []byte("R"), Ready: true}, parseAll(&parser, "R\x00"))
}

func parseAll(p *Parser, in string) (pr ParseResult) {
	for i := 0; i < len(in); i++ {
		pr = p.Parse(in[i])
	}
	return
}
