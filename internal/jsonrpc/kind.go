// ABOUTME: Message kind classification for JSON-RPC 2.0 messages
// ABOUTME: Decides Request/Notification/Response/Error from field presence

package jsonrpc

import "encoding/json"

// MessageKind identifies one of the four JSON-RPC message shapes.
type MessageKind int

const (
	KindRequest MessageKind = iota
	KindNotification
	KindResponse
	KindError
)

func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindNotification:
		return "Notification"
	case KindResponse:
		return "Response"
	case KindError:
		return "Error"
	default:
		return "Request"
	}
}

// Classify inspects a raw JSON document and decides which of the four
// message kinds it is. Evaluated in strict precedence:
//
//  1. id present and error present -> Error
//  2. id present, result present, method absent -> Response
//  3. id present and method present -> Request
//  4. id absent and method present -> Notification
//  5. otherwise -> Request
//
// Classification is total: malformed or ambiguous input (including an
// empty object) falls through to Request rather than failing.
func Classify(raw []byte) MessageKind {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return KindRequest
	}

	_, hasID := fields["id"]
	_, hasMethod := fields["method"]
	_, hasResult := fields["result"]
	_, hasError := fields["error"]

	switch {
	case hasID && hasError:
		return KindError
	case hasID && hasResult && !hasMethod:
		return KindResponse
	case hasID && hasMethod:
		return KindRequest
	case !hasID && hasMethod:
		return KindNotification
	default:
		return KindRequest
	}
}
