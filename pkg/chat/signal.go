package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// numericText matches strings that consist solely of digits. Hosts emit these
// both as transcript indices and, occasionally, as bogus message bodies.
var numericText = regexp.MustCompile(`^\d+$`)

// IsNumericText reports whether s consists solely of digits.
func IsNumericText(s string) bool {
	return numericText.MatchString(s)
}

// SignalKind discriminates the Signal variant.
type SignalKind int

const (
	// SignalRawText carries a literal message body.
	SignalRawText SignalKind = iota

	// SignalTranscriptIndex carries a position in the host transcript.
	SignalTranscriptIndex

	// SignalStructuredMessage carries a full message object.
	SignalStructuredMessage
)

// Signal is the tagged variant of the heterogeneous "a message happened"
// payloads hosts emit: a plain string, a numeric transcript index (as a
// number or a digit string), or a structured message object. Classification
// happens once at the bridge boundary so the pipelines downstream are total.
type Signal struct {
	Kind SignalKind

	// Text is set for SignalRawText.
	Text string

	// Index is set for SignalTranscriptIndex.
	Index int

	// Message is set for SignalStructuredMessage.
	Message *Message
}

// RawTextSignal builds a literal-text signal.
func RawTextSignal(text string) Signal {
	return Signal{Kind: SignalRawText, Text: text}
}

// IndexSignal builds a transcript-index signal.
func IndexSignal(index int) Signal {
	return Signal{Kind: SignalTranscriptIndex, Index: index}
}

// MessageSignal builds a structured-message signal.
func MessageSignal(msg *Message) Signal {
	return Signal{Kind: SignalStructuredMessage, Message: msg}
}

// ParseSignal classifies a raw JSON event payload into a Signal.
//
// Resolution order follows the host convention: a JSON number or a string of
// digits is a transcript index, any other string is literal text, and an
// object is a structured message.
func ParseSignal(data []byte) (Signal, error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if IsNumericText(asString) {
			var index int
			if _, err := fmt.Sscanf(asString, "%d", &index); err == nil {
				return IndexSignal(index), nil
			}
		}
		return RawTextSignal(asString), nil
	}

	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		return IndexSignal(int(asNumber)), nil
	}

	var asMessage Message
	if err := json.Unmarshal(data, &asMessage); err == nil {
		return MessageSignal(&asMessage), nil
	}

	return Signal{}, fmt.Errorf("unrecognized signal payload: %s", string(data))
}
