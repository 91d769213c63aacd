package rabbitmq

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sent
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sent{to, subject, text, html})
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHandleRendersTemplate(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s, quietLogger())

	body := []byte(`{"to":"bob@example.com","template":"order_status","data":{"Name":"Bob","OrderID":"o-1","From":"Processing","Status":"Shipped"}}`)
	require.NoError(t, w.Handle(context.Background(), body))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "bob@example.com", s.sent[0].to)
	assert.Equal(t, "Order o-1 is now Shipped", s.sent[0].subject)
	assert.Contains(t, s.sent[0].html, "<strong>Shipped</strong>")
}

func TestHandleRawMessage(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s, quietLogger())

	require.NoError(t, w.Handle(context.Background(), []byte(`{"to":"a@example.com","subject":"hi","text":"plain"}`)))
	require.Len(t, s.sent, 1)
	assert.Equal(t, sent{"a@example.com", "hi", "plain", ""}, s.sent[0])
}

func TestHandleBadJobs(t *testing.T) {
	w := NewEmailWorker(&fakeSender{}, quietLogger())
	cases := map[string]string{
		"invalid json":      `{"to":`,
		"missing recipient": `{"subject":"hi"}`,
		"unknown template":  `{"to":"a@example.com","template":"welcome"}`,
		"empty body":        `{"to":"a@example.com","subject":"hi"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := w.Handle(context.Background(), []byte(body))
			assert.ErrorIs(t, err, ErrBadJob)
		})
	}
}

func TestHandleSendFailureIsRetryable(t *testing.T) {
	w := NewEmailWorker(&fakeSender{err: errors.New("mailgun down")}, quietLogger())
	err := w.Handle(context.Background(), []byte(`{"to":"a@example.com","subject":"hi","text":"t"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadJob)
}

type ackRecord struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcker struct {
	records []ackRecord
}

func (a *fakeAcker) Ack(tag uint64, _ bool) error {
	a.records = append(a.records, ackRecord{tag: tag, ack: true})
	return nil
}

func (a *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	a.records = append(a.records, ackRecord{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestConsumeAcksDropsAndRequeues(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s, quietLogger())
	acker := &fakeAcker{}

	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: []byte(`{"to":"a@example.com","subject":"ok","text":"t"}`)}
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte(`not json`)}
	close(msgs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Consume(ctx, msgs)

	assert.Equal(t, []ackRecord{
		{tag: 1, ack: true},
		{tag: 2, requeue: false},
	}, acker.records)

	s.err = errors.New("temporary")
	retry := make(chan amqp.Delivery, 1)
	retry <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte(`{"to":"a@example.com","subject":"again","text":"t"}`)}
	close(retry)
	w.Consume(ctx, retry)

	assert.Equal(t, ackRecord{tag: 3, requeue: true}, acker.records[2])
}
