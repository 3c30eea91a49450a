package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/emberco/recall/pkg/chat"
)

var _ = Describe("ParseSignal", func() {
	It("classifies a plain string as raw text", func() {
		sig, err := chat.ParseSignal([]byte(`"hello there"`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Kind).To(Equal(chat.SignalRawText))
		Expect(sig.Text).To(Equal("hello there"))
	})

	It("classifies a digit string as a transcript index", func() {
		sig, err := chat.ParseSignal([]byte(`"3"`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Kind).To(Equal(chat.SignalTranscriptIndex))
		Expect(sig.Index).To(Equal(3))
	})

	It("classifies a JSON number as a transcript index", func() {
		sig, err := chat.ParseSignal([]byte(`7`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Kind).To(Equal(chat.SignalTranscriptIndex))
		Expect(sig.Index).To(Equal(7))
	})

	It("classifies an object as a structured message", func() {
		sig, err := chat.ParseSignal([]byte(`{"mes": "remembered", "is_user": true}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Kind).To(Equal(chat.SignalStructuredMessage))
		Expect(sig.Message).NotTo(BeNil())
		Expect(sig.Message.GetText()).To(Equal("remembered"))
		Expect(sig.Message.Type()).To(Equal(chat.MessageTypeUser))
	})

	It("keeps a string with digits and other characters as raw text", func() {
		sig, err := chat.ParseSignal([]byte(`"room 42 is haunted"`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Kind).To(Equal(chat.SignalRawText))
	})

	It("errors on an array payload", func() {
		_, err := chat.ParseSignal([]byte(`[1, 2, 3]`))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Message", func() {
	Describe("GetText", func() {
		It("prefers mes over the other fields", func() {
			m := chat.Message{Mes: "from mes", Text: "from text"}
			Expect(m.GetText()).To(Equal("from mes"))
		})

		It("falls through message, text, content in order", func() {
			Expect((&chat.Message{Message: "a", Content: "b"}).GetText()).To(Equal("a"))
			Expect((&chat.Message{Text: "c", Content: "b"}).GetText()).To(Equal("c"))
			Expect((&chat.Message{Content: "b"}).GetText()).To(Equal("b"))
		})

		It("returns empty when no field is populated", func() {
			Expect((&chat.Message{Name: "Alice"}).GetText()).To(BeEmpty())
		})
	})
})

var _ = Describe("Scope", func() {
	It("is active only when both identifiers are present", func() {
		Expect(chat.Scope{CharacterID: "c1", ChatID: "ch1"}.Active()).To(BeTrue())
		Expect(chat.Scope{CharacterID: "c1"}.Active()).To(BeFalse())
		Expect(chat.Scope{ChatID: "ch1"}.Active()).To(BeFalse())
		Expect(chat.Scope{}.Active()).To(BeFalse())
	})
})

var _ = Describe("Personas", func() {
	It("resolves configured display names", func() {
		p := chat.Personas{UserName: "Riley", CharacterName: "Seraphina"}
		Expect(p.Label(chat.MessageTypeUser)).To(Equal("Riley"))
		Expect(p.Label(chat.MessageTypeAssistant)).To(Equal("Seraphina"))
	})

	It("falls back to the raw message type", func() {
		p := chat.Personas{}
		Expect(p.Label(chat.MessageTypeUser)).To(Equal("user"))
		Expect(p.Label(chat.MessageTypeAssistant)).To(Equal("assistant"))
	})
})
