// ABOUTME: MessageBatch wrapper over a single envelope or an ordered array
// ABOUTME: Arity narrowing plus the reply-owed IncludesRequest check

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MessageBatch holds either one envelope or an ordered sequence of them,
// matching the JSON-RPC rule that a top-level array is a batch.
type MessageBatch struct {
	single Message
	batch  []Message
}

// SingleMessage wraps one envelope.
func SingleMessage(m Message) MessageBatch {
	return MessageBatch{single: m}
}

// BatchMessages wraps an ordered sequence of envelopes.
func BatchMessages(ms []Message) MessageBatch {
	return MessageBatch{batch: ms}
}

// IsBatch reports whether the wrapper holds a sequence.
func (b MessageBatch) IsBatch() bool {
	return b.single == nil
}

// AsSingle narrows to the sole envelope, failing on a batch.
func (b MessageBatch) AsSingle() (Message, error) {
	if b.IsBatch() {
		return nil, NewInternalError().WithMessage(`cannot convert a message batch to a single message: expected "Single", received "Batch"`)
	}
	return b.single, nil
}

// AsBatch narrows to the sequence, failing on a single envelope.
func (b MessageBatch) AsBatch() ([]Message, error) {
	if !b.IsBatch() {
		return nil, NewInternalError().WithMessage(`cannot convert a single message to a message batch: expected "Batch", received "Single"`)
	}
	return b.batch, nil
}

// Messages returns the contained envelopes in order, regardless of arity.
func (b MessageBatch) Messages() []Message {
	if b.IsBatch() {
		return b.batch
	}
	return []Message{b.single}
}

// IncludesRequest reports whether any contained envelope is a request,
// which tells the transport a reply is owed.
func (b MessageBatch) IncludesRequest() bool {
	for _, m := range b.Messages() {
		if m.Kind() == KindRequest {
			return true
		}
	}
	return false
}

func (b MessageBatch) MarshalJSON() ([]byte, error) {
	if b.IsBatch() {
		return json.Marshal(b.batch)
	}
	return json.Marshal(b.single)
}

// DecodeMessageBatch decodes a bare envelope object or a JSON array of
// envelope objects, preserving array order.
func DecodeMessageBatch(raw []byte, vocab *Vocabulary, dir Direction) (MessageBatch, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return MessageBatch{}, NewParseError().WithMessage("empty message")
	}
	if trimmed[0] != '[' {
		m, err := DecodeMessage(raw, vocab, dir)
		if err != nil {
			return MessageBatch{}, err
		}
		return SingleMessage(m), nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return MessageBatch{}, NewParseError().WithMessage(fmt.Sprintf("invalid message batch: %v", err))
	}
	messages := make([]Message, 0, len(elements))
	for i, el := range elements {
		m, err := DecodeMessage(el, vocab, dir)
		if err != nil {
			if eo, ok := err.(*ErrorObject); ok {
				return MessageBatch{}, eo.WithMessage(fmt.Sprintf("batch element %d: %s", i, eo.Message))
			}
			return MessageBatch{}, err
		}
		messages = append(messages, m)
	}
	return BatchMessages(messages), nil
}
