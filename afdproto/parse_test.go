package afdproto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdproto"
)

func TestParseIntervalSummaryMinimal(t *testing.T) {
	u := afdproto.Parse("IS 3 12345 42 1 0 0 2 5")
	require.Equal(t, afdproto.KindIntervalSummary, u.Kind)
	require.NotNil(t, u.IS)
	require.Equal(t, uint64(3), u.IS.FC)
	require.Equal(t, uint64(12345), u.IS.FS)
	require.Equal(t, uint64(42), u.IS.TR)
	require.Equal(t, uint64(1), u.IS.FR)
	require.Equal(t, uint64(0), u.IS.EC)
	require.Equal(t, uint64(0), u.IS.HostErrorCounter)
	require.Equal(t, uint64(2), u.IS.NoOfTransfers)
	require.Equal(t, uint64(5), u.IS.JobsInQueue)
	require.False(t, u.IS.HasCounters)
}

func TestParseIntervalSummaryWithCounters(t *testing.T) {
	u := afdproto.Parse("IS 3 12345 42 1 0 0 2 5 100 200 4 0 10 20")
	require.Equal(t, afdproto.KindIntervalSummary, u.Kind)
	require.True(t, u.IS.HasCounters)
	require.Equal(t, uint64(100), u.IS.FilesSend)
	require.Equal(t, uint64(200), u.IS.BytesSend)
	require.Equal(t, uint64(4), u.IS.Connections)
	require.Equal(t, uint64(20), u.IS.BytesReceived)
}

func TestParseIntervalSummaryTooShortIsGarbage(t *testing.T) {
	u := afdproto.Parse("IS 1 2 3")
	require.Equal(t, afdproto.KindUnknown, u.Kind)
	require.NotEmpty(t, u.Warnings)
}

func TestParseHostListGroupWhenRealMissing(t *testing.T) {
	u := afdproto.Parse("HL 0 alpha")
	require.Equal(t, afdproto.KindHostList, u.Kind)
	require.True(t, u.Host.IsGroup)
	require.Equal(t, "alpha", u.Host.Alias)
}

func TestParseHostListNotGroupWhenRealPresent(t *testing.T) {
	u := afdproto.Parse("HL 1 beta host-b.example")
	require.Equal(t, afdproto.KindHostList, u.Kind)
	require.False(t, u.Host.IsGroup)
	require.Equal(t, "host-b.example", u.Host.Real1)
}

func TestParseDirList(t *testing.T) {
	u := afdproto.Parse("DL 0 1a alias-a /remote/a")
	require.Equal(t, afdproto.KindDirList, u.Kind)
	require.Equal(t, uint32(0x1a), u.Dir.DirID)
	require.Equal(t, "alias-a", u.Dir.Alias)
	require.Equal(t, "/remote/a", u.Dir.Name)
	require.False(t, u.Dir.HasOrig)
}

func TestParseJobListUppercasePassthrough(t *testing.T) {
	u := afdproto.Parse("JL 0 2a 1a 0 3 ops@example.com")
	require.Equal(t, afdproto.KindJobList, u.Kind)
	require.Equal(t, "ops@example.com", u.Job.Recipient)
	require.False(t, u.Job.WasBlurred)
}

func TestParseJobListLowercaseUnblurs(t *testing.T) {
	plain := "ops@example.com"
	blurred := afdproto.Blur(plain)
	u := afdproto.Parse("Jl 0 2a 1a 0 3 " + blurred)
	require.Equal(t, afdproto.KindJobList, u.Kind)
	require.Equal(t, plain, u.Job.Recipient)
	require.True(t, u.Job.WasBlurred)
}

func TestParseErrorHistoryZerosTail(t *testing.T) {
	u := afdproto.Parse("EL 2 10 20 30")
	require.Equal(t, afdproto.KindErrorHistory, u.Kind)
	require.Equal(t, uint32(10), u.ErrHist.History[0])
	require.Equal(t, uint32(20), u.ErrHist.History[1])
	require.Equal(t, uint32(30), u.ErrHist.History[2])
	for i := 3; i < afdproto.ErrorHistoryLength; i++ {
		require.Equal(t, uint32(0), u.ErrHist.History[i], "index %d should be zeroed", i)
	}
}

func TestParseShutdownLiteral(t *testing.T) {
	u := afdproto.Parse(afdproto.ShutdownLiteral)
	require.Equal(t, afdproto.KindShutdown, u.Kind)
}

func TestParseNumericStatus(t *testing.T) {
	u := afdproto.Parse("211-Statistics follow")
	require.Equal(t, afdproto.KindNumericStatus, u.Kind)
	require.Equal(t, 211, u.NumericStatus)
}

func TestParseUnknownTagIsGarbageNotError(t *testing.T) {
	u := afdproto.Parse("ZZ whatever")
	require.Equal(t, afdproto.KindUnknown, u.Kind)
	require.NotEmpty(t, u.Warnings)
}

func TestParsePurityAcrossChunking(t *testing.T) {
	stream := []byte("IS 1 2 3 4 5 6 7 8\r\nHL 0 alpha host-a\r\nAV 4.5.1\r\n")

	replay := func(chunks ...[]byte) []afdproto.Update {
		var out []afdproto.Update
		var pending []byte
		for _, c := range chunks {
			msgs, rest := afdproto.SplitMessages(append(pending, c...))
			for _, m := range msgs {
				out = append(out, afdproto.Parse(string(m)))
			}
			pending = append([]byte(nil), rest...)
		}
		return out
	}

	whole := replay(stream)
	split := replay(stream[:7], stream[7:25], stream[25:])
	require.Len(t, whole, 3)
	require.Equal(t, whole, split)
}

func TestSplitMessagesRetainsPartialTail(t *testing.T) {
	buf := []byte("IS 1 2 3 4 5 6 7 8\r\nHL 0 alpha\r\nAV 1.0")
	msgs, rest := afdproto.SplitMessages(buf)
	require.Len(t, msgs, 2)
	require.Equal(t, "IS 1 2 3 4 5 6 7 8", string(msgs[0]))
	require.Equal(t, "HL 0 alpha", string(msgs[1]))
	require.Equal(t, "AV 1.0", string(rest))
}

func TestDecodeSeverityUnknownReplaced(t *testing.T) {
	u := afdproto.Parse("RH " + string(rune(' '+afdproto.ColorPoolSize+5)))
	require.Equal(t, afdproto.KindLogHistoryReceive, u.Kind)
	require.Equal(t, byte(afdproto.NoInformation), u.LogHist.Bytes[0])
	require.NotEmpty(t, u.Warnings)
}
