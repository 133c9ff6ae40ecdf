package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/internal/tasks"
	"nutriplan/pkg/logger"
)

type fakeMessenger struct {
	mu            sync.Mutex
	messages      []string
	documents     []string
	displayNames  []string
	failMessage   bool
	failDocument  bool
	messageCalls  int
	documentCalls int
}

func (f *fakeMessenger) SendMessage(ctx context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageCalls++
	if f.failMessage {
		return "", errors.New("transport down")
	}
	f.messages = append(f.messages, body)
	return "SM123", nil
}

func (f *fakeMessenger) SendDocument(ctx context.Context, to, body, filePath, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documentCalls++
	if f.failDocument {
		return "", errors.New("transport down")
	}
	f.documents = append(f.documents, filePath)
	f.displayNames = append(f.displayNames, displayName)
	return "MM456", nil
}

func (f *fakeMessenger) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messageCalls, f.documentCalls
}

func newTestDispatcher(m Messenger) (*Dispatcher, *tasks.Scheduler) {
	sched := tasks.NewScheduler(logger.NewNop())
	return NewDispatcher(m, sched, time.Millisecond, logger.NewNop()), sched
}

func TestDeliverSendsWelcomeThenDocument(t *testing.T) {
	fake := &fakeMessenger{}
	d, sched := newTestDispatcher(fake)

	receipt, err := d.Deliver(context.Background(), "+5511999999999",
		models.UserProfile{Name: "Maria Silva"}, "/tmp/plan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "SM123", receipt.MessageSID)
	assert.Equal(t, "MM456", receipt.DocumentSID)
	require.Len(t, fake.messages, 1)
	assert.Contains(t, fake.messages[0], "Olá Maria Silva")
	require.Len(t, fake.documents, 1)
	assert.Equal(t, "Plano_Nutricional_Maria_Silva.pdf", fake.displayNames[0])

	// Follow-up reminder fires after the delay.
	sched.Wait()
	msgs, _ := fake.counts()
	assert.Equal(t, 2, msgs)
}

func TestDeliverFallbackDisplayNameWithoutProfileName(t *testing.T) {
	fake := &fakeMessenger{}
	d, _ := newTestDispatcher(fake)

	_, err := d.Deliver(context.Background(), "+5511999999999", models.UserProfile{}, "/tmp/plan.pdf")
	require.NoError(t, err)

	require.Len(t, fake.displayNames, 1)
	assert.Equal(t, "Plano_Nutricional_cliente.pdf", fake.displayNames[0])
	assert.Contains(t, fake.messages[0], "Olá cliente")
}

func TestDeliverRejectsNumberWithoutCountryCode(t *testing.T) {
	fake := &fakeMessenger{}
	d, _ := newTestDispatcher(fake)

	_, err := d.Deliver(context.Background(), "5511999999999", models.UserProfile{}, "/tmp/plan.pdf")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidRecipient))

	msgs, docs := fake.counts()
	assert.Zero(t, msgs)
	assert.Zero(t, docs)
}

func TestDeliverSkipsDocumentWhenWelcomeFails(t *testing.T) {
	fake := &fakeMessenger{failMessage: true}
	d, sched := newTestDispatcher(fake)

	_, err := d.Deliver(context.Background(), "+5511999999999", models.UserProfile{}, "/tmp/plan.pdf")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))

	sched.Wait()
	_, docs := fake.counts()
	assert.Zero(t, docs, "document must not be sent after a failed precursor")
}

func TestDeliverDocumentFailure(t *testing.T) {
	fake := &fakeMessenger{failDocument: true}
	d, sched := newTestDispatcher(fake)

	_, err := d.Deliver(context.Background(), "+5511999999999", models.UserProfile{}, "/tmp/plan.pdf")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))

	// No follow-up is scheduled when the document was never delivered.
	sched.Wait()
	msgs, _ := fake.counts()
	assert.Equal(t, 1, msgs)
}

func TestDeliverFollowUpFailureIsSwallowed(t *testing.T) {
	fake := &fakeMessenger{}
	d, sched := newTestDispatcher(fake)

	_, err := d.Deliver(context.Background(), "+5511999999999", models.UserProfile{}, "/tmp/plan.pdf")
	require.NoError(t, err)

	// Break the transport before the follow-up fires; Deliver already
	// returned, so the failure can only be logged.
	fake.mu.Lock()
	fake.failMessage = true
	fake.mu.Unlock()

	sched.Wait()
}
