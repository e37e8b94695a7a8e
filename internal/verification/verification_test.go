package verification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/lanblog/apiserver/internal/codes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	answer string
	image  []byte
}

func (g *stubGenerator) Generate() (string, []byte, error) {
	return g.answer, g.image, nil
}

type stubGateway struct {
	phones    []string
	sentCodes []string
	err       error
}

func (g *stubGateway) Send(_ context.Context, phone, code string, _ int) error {
	if g.err != nil {
		return g.err
	}
	g.phones = append(g.phones, phone)
	g.sentCodes = append(g.sentCodes, code)
	return nil
}

func newTestWorkflow(answer string, gateway *stubGateway) (*Workflow, *codes.MemoryStore) {
	store := codes.NewMemoryStore()
	generator := &stubGenerator{answer: answer, image: []byte("png-bytes")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorkflow(store, generator, gateway, logger), store
}

func TestIssueImageCodeRequiresToken(t *testing.T) {
	workflow, _ := newTestWorkflow("XY9Q", &stubGateway{})

	_, err := workflow.IssueImageCode(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = workflow.IssueImageCode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestIssueImageCodeStoresAnswer(t *testing.T) {
	workflow, store := newTestWorkflow("XY9Q", &stubGateway{})
	ctx := context.Background()

	image, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), image)

	answer, err := store.Get(ctx, codes.ImagePrefix+"T1")
	require.NoError(t, err)
	assert.Equal(t, "XY9Q", answer)
}

func TestIssueImageCodeOverwritesPriorAnswer(t *testing.T) {
	gateway := &stubGateway{}
	store := codes.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first := NewWorkflow(store, &stubGenerator{answer: "AAAA"}, gateway, logger)
	second := NewWorkflow(store, &stubGenerator{answer: "BBBB"}, gateway, logger)
	ctx := context.Background()

	_, err := first.IssueImageCode(ctx, "T1")
	require.NoError(t, err)
	_, err = second.IssueImageCode(ctx, "T1")
	require.NoError(t, err)

	answer, err := store.Get(ctx, codes.ImagePrefix+"T1")
	require.NoError(t, err)
	assert.Equal(t, "BBBB", answer)
}

func TestRequestSmsCodeMissingParameters(t *testing.T) {
	workflow, _ := newTestWorkflow("XY9Q", &stubGateway{})
	ctx := context.Background()

	assert.ErrorIs(t, workflow.RequestSmsCode(ctx, "", "xy9q", "T1"), ErrMissingParameter)
	assert.ErrorIs(t, workflow.RequestSmsCode(ctx, "13800000000", "", "T1"), ErrMissingParameter)
	assert.ErrorIs(t, workflow.RequestSmsCode(ctx, "13800000000", "xy9q", ""), ErrMissingParameter)
}

func TestRequestSmsCodeWithoutIssuedChallenge(t *testing.T) {
	workflow, _ := newTestWorkflow("XY9Q", &stubGateway{})

	err := workflow.RequestSmsCode(context.Background(), "13800000000", "xy9q", "T1")
	assert.ErrorIs(t, err, ErrImageCodeExpired)
}

func TestRequestSmsCodeCaseInsensitiveMatch(t *testing.T) {
	gateway := &stubGateway{}
	workflow, store := newTestWorkflow("XY9Q", gateway)
	ctx := context.Background()

	_, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)

	require.NoError(t, workflow.RequestSmsCode(ctx, "13800000000", "xy9q", "T1"))

	code, err := store.Get(ctx, codes.SmsPrefix+"13800000000")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

	require.Len(t, gateway.sentCodes, 1)
	assert.Equal(t, code, gateway.sentCodes[0])
	assert.Equal(t, []string{"13800000000"}, gateway.phones)
}

func TestRequestSmsCodeChallengeIsSingleUse(t *testing.T) {
	workflow, _ := newTestWorkflow("XY9Q", &stubGateway{})
	ctx := context.Background()

	_, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)

	// Wrong answer consumes the challenge.
	err = workflow.RequestSmsCode(ctx, "13800000000", "nope", "T1")
	assert.ErrorIs(t, err, ErrImageCodeMismatch)

	// Retrying with the right answer now fails: the stored answer is gone.
	err = workflow.RequestSmsCode(ctx, "13800000000", "xy9q", "T1")
	assert.ErrorIs(t, err, ErrImageCodeExpired)
}

func TestRequestSmsCodeSucceededChallengeIsAlsoConsumed(t *testing.T) {
	workflow, _ := newTestWorkflow("XY9Q", &stubGateway{})
	ctx := context.Background()

	_, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)

	require.NoError(t, workflow.RequestSmsCode(ctx, "13800000000", "XY9Q", "T1"))

	err = workflow.RequestSmsCode(ctx, "13800000000", "XY9Q", "T1")
	assert.ErrorIs(t, err, ErrImageCodeExpired)
}

func TestRequestSmsCodeGatewayFailureKeepsStoredCode(t *testing.T) {
	gateway := &stubGateway{err: errors.New("provider down")}
	workflow, store := newTestWorkflow("XY9Q", gateway)
	ctx := context.Background()

	_, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)

	// Delivery failed but the operation still succeeds and the code
	// stays usable.
	require.NoError(t, workflow.RequestSmsCode(ctx, "13800000000", "xy9q", "T1"))

	code, err := store.Get(ctx, codes.SmsPrefix+"13800000000")
	require.NoError(t, err)

	ok, err := workflow.VerifySmsCode(ctx, "13800000000", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequestSmsCodeLastWriteWins(t *testing.T) {
	gateway := &stubGateway{}
	workflow, store := newTestWorkflow("XY9Q", gateway)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := workflow.IssueImageCode(ctx, "T1")
		require.NoError(t, err)
		require.NoError(t, workflow.RequestSmsCode(ctx, "13800000000", "xy9q", "T1"))
	}

	require.Len(t, gateway.sentCodes, 2)
	stored, err := store.Get(ctx, codes.SmsPrefix+"13800000000")
	require.NoError(t, err)
	assert.Equal(t, gateway.sentCodes[1], stored)
}

func TestVerifySmsCodeExpired(t *testing.T) {
	workflow, store := newTestWorkflow("XY9Q", &stubGateway{})
	ctx := context.Background()

	_, err := workflow.VerifySmsCode(ctx, "13800000000", "123456")
	assert.ErrorIs(t, err, ErrSmsCodeExpired)

	// Matching value but past TTL still reads as expired.
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	require.NoError(t, store.Set(ctx, codes.SmsPrefix+"13800000000", "123456", 300*time.Second))
	store.SetClock(func() time.Time { return now.Add(301 * time.Second) })

	_, err = workflow.VerifySmsCode(ctx, "13800000000", "123456")
	assert.ErrorIs(t, err, ErrSmsCodeExpired)
}

func TestVerifySmsCodeMismatchKeepsCode(t *testing.T) {
	gateway := &stubGateway{}
	workflow, _ := newTestWorkflow("XY9Q", gateway)
	ctx := context.Background()

	_, err := workflow.IssueImageCode(ctx, "T1")
	require.NoError(t, err)
	require.NoError(t, workflow.RequestSmsCode(ctx, "13800000000", "xy9q", "T1"))
	code := gateway.sentCodes[0]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	ok, err := workflow.VerifySmsCode(ctx, "13800000000", wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	// The failed attempt did not consume the code.
	ok, err = workflow.VerifySmsCode(ctx, "13800000000", code)
	require.NoError(t, err)
	assert.True(t, ok)
}
