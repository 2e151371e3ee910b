package graph

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/helio/blend/fieldpath"
	"github.com/helio/blend/internal/blocktable"
	"github.com/helio/blend/pointerindex"
	"github.com/helio/blend/sdna"
	"github.com/helio/blend/value"
)

// buildCycleSchema mirrors fieldpath's test fixture: two mutually-pointing
// structs, A { B *next; } and B { A *next; }.
func buildCycleSchema(t *testing.T) *sdna.SDNA {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("SDNA")

	buf.WriteString("NAME")
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	buf.WriteString("*next")
	buf.WriteByte(0)
	pad4(&buf)

	buf.WriteString("TYPE")
	binary.Write(&buf, binary.LittleEndian, uint32(3))
	for _, n := range []string{"int", "A", "B"} {
		buf.WriteString(n)
		buf.WriteByte(0)
	}
	pad4(&buf)

	buf.WriteString("TLEN")
	for _, sz := range []uint16{4, 8, 8} {
		binary.Write(&buf, binary.LittleEndian, sz)
	}
	pad4(&buf)

	buf.WriteString("STRC")
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	pad4(&buf)

	s, err := sdna.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("building cycle schema: %v", err)
	}
	return s
}

func pad4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func buildResolver(t *testing.T) (*Resolver, []blocktable.Block) {
	t.Helper()
	s := buildCycleSchema(t)

	payloadA := make([]byte, 8)
	binary.LittleEndian.PutUint64(payloadA, 0x2000)
	payloadB := make([]byte, 8)
	binary.LittleEndian.PutUint64(payloadB, 0x1000)

	blocks := []blocktable.Block{
		{Code: "AAAA", SDNAIndex: 0, Identity: 0x1000, Payload: payloadA},
		{Code: "BBBB", SDNAIndex: 1, Identity: 0x2000, Payload: payloadB},
	}
	idx, _, err := pointerindex.Build(blocks, s, pointerindex.DefaultDetectOptions())
	if err != nil {
		t.Fatalf("building pointer index: %v", err)
	}
	dec := value.NewDecoder(s, value.DefaultOptions())
	return &Resolver{Blocks: blocks, SDNA: s, Index: idx, Decoder: dec}, blocks
}

func TestOutboundScan(t *testing.T) {
	r, blocks := buildResolver(t)
	root, err := r.Decoder.DecodeStruct(blocks[0].SDNAIndex, blocks[0].Payload)
	if err != nil {
		t.Fatalf("decoding root: %v", err)
	}

	edges := r.OutboundScan(root, 1)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].TargetBlockIndex != 1 || edges[0].OwnerPath != "next" {
		t.Errorf("edge = %+v", edges[0])
	}
}

func TestBFS_VisitsBothNodesDespiteCycle(t *testing.T) {
	r, blocks := buildResolver(t)
	root, err := r.Decoder.DecodeStruct(blocks[0].SDNAIndex, blocks[0].Payload)
	if err != nil {
		t.Fatalf("decoding root: %v", err)
	}

	result := r.BFS(0, root, DefaultBudget())
	if len(result.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(result.Nodes))
	}
	if result.Truncation != TruncComplete {
		t.Errorf("Truncation = %v, want complete", result.Truncation)
	}
}

func TestShortestRoute(t *testing.T) {
	r, blocks := buildResolver(t)
	res, err := r.ShortestRoute(blocks[0].Identity, blocks[1].Identity, DefaultBudget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || len(res.Edges) != 1 {
		t.Fatalf("ShortestRoute = %+v", res)
	}
}

func TestShortestRoute_TruncatesOnNodeBudget(t *testing.T) {
	r, blocks := buildResolver(t)
	budget := Budget{MaxDepth: 64, MaxNodes: 1, MaxEdges: 200_000, RefsDepth: 1}
	res, err := r.ShortestRoute(blocks[0].Identity, blocks[1].Identity, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found {
		t.Fatalf("ShortestRoute = %+v, want not found", res)
	}
	if res.Truncation != TruncNodes {
		t.Errorf("Truncation = %v, want nodes", res.Truncation)
	}
}

func TestShortestRoute_TruncatesOnEdgeBudget(t *testing.T) {
	r, blocks := buildResolver(t)
	budget := Budget{MaxDepth: 64, MaxNodes: 100_000, MaxEdges: 0, RefsDepth: 1}
	res, err := r.ShortestRoute(blocks[0].Identity, blocks[1].Identity, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found {
		t.Fatalf("ShortestRoute = %+v, want not found", res)
	}
	if res.Truncation != TruncEdges {
		t.Errorf("Truncation = %v, want edges", res.Truncation)
	}
}

func TestLinkedListWalk_StopsOnCycle(t *testing.T) {
	r, blocks := buildResolver(t)
	root, err := r.Decoder.DecodeStruct(blocks[0].SDNAIndex, blocks[0].Payload)
	if err != nil {
		t.Fatalf("decoding root: %v", err)
	}

	steps, reason, err := r.LinkedListWalk(root, 0, fieldpath.Path{}, "next", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != fieldpath.ReasonCycle {
		t.Errorf("reason = %v, want cycle", reason)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}
}
