package transfer_test

import (
	"errors"
	"net/url"
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/transfer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("transfer", func() {
	fullResult := func() *analysis.Result {
		return &analysis.Result{
			Pitch: &analysis.Pitch{PitchText: "Acme sells rockets to hobbyists.", UserQuery: "market sizing"},
			Feedback: &analysis.Feedback{
				Overall:       "Strong team & <clear> vision. Needs traction.",
				Strengths:     "Experienced founders. Good IP.",
				Weaknesses:    "Little revenue.",
				Opportunities: "Growing hobby market; 20% CAGR.",
				Threats:       "Regulation.",
				Suggestions:   "Show signed LOIs.",
			},
			Score: &analysis.Score{Clarity: 7.5, Differentiation: 8, Traction: 4, Scalability: 6.25, Overall: 6.5},
		}
	}

	Context("encoding", func() {
		It("matches encodeURIComponent over compact JSON", func() {
			encoded, err := transfer.Encode(&analysis.Result{Score: &analysis.Score{Overall: 7}})
			Expect(err).To(BeNil())
			Expect(encoded).To(Equal("%7B%22score%22%3A%7B%22clarity%22%3A0%2C%22differentiation%22%3A0%2C%22traction%22%3A0%2C%22scalability%22%3A0%2C%22overall%22%3A7%7D%7D"))
		})

		It("leaves the unreserved set alone and does not escape HTML", func() {
			encoded, err := transfer.Encode(&analysis.Result{Pitch: &analysis.Pitch{PitchText: "a-b_c.d!e~f*g'h(i)j <k>&"}})
			Expect(err).To(BeNil())
			Expect(encoded).To(ContainSubstring("a-b_c.d!e~f*g'h(i)j%20%3Ck%3E%26"))
			Expect(encoded).NotTo(ContainSubstring("u003c"))
		})

		It("percent-encodes UTF-8 bytes", func() {
			encoded, err := transfer.Encode(&analysis.Result{Pitch: &analysis.Pitch{PitchText: "é"}})
			Expect(err).To(BeNil())
			Expect(encoded).To(ContainSubstring("%C3%A9"))
		})

		It("refuses a nil result", func() {
			_, err := transfer.Encode(nil)
			Expect(err).NotTo(BeNil())
		})
	})

	Context("round trip", func() {
		It("decodes what it encodes", func() {
			original := fullResult()
			encoded, err := transfer.Encode(original)
			Expect(err).To(BeNil())

			decoded, err := transfer.Decode(encoded)
			Expect(err).To(BeNil())
			Expect(decoded).To(Equal(original))
		})

		It("keeps absent sections absent", func() {
			original := &analysis.Result{Feedback: &analysis.Feedback{Overall: "Fine."}}
			encoded, err := transfer.Encode(original)
			Expect(err).To(BeNil())

			decoded, err := transfer.Decode(encoded)
			Expect(err).To(BeNil())
			Expect(decoded.Score).To(BeNil())
			Expect(decoded.Pitch).To(BeNil())
			Expect(decoded.Feedback.Overall).To(Equal("Fine."))
		})

		It("survives a results URL built and parsed by net/url", func() {
			original := fullResult()
			resultsURL, err := transfer.ResultsURL("http://localhost:3000/results", original)
			Expect(err).To(BeNil())
			Expect(resultsURL).To(HavePrefix("http://localhost:3000/results?data=%7B"))

			u, err := url.Parse(resultsURL)
			Expect(err).To(BeNil())
			decoded, err := transfer.FromQuery(u.Query())
			Expect(err).To(BeNil())
			Expect(decoded).To(Equal(original))

			decoded, err = transfer.FromURL(resultsURL)
			Expect(err).To(BeNil())
			Expect(decoded).To(Equal(original))
		})

		It("appends to a base URL that already has a query", func() {
			resultsURL, err := transfer.ResultsURL("http://localhost:3000/results?lang=en", fullResult())
			Expect(err).To(BeNil())
			Expect(resultsURL).To(HavePrefix("http://localhost:3000/results?lang=en&data="))
		})
	})

	Context("decode failures", func() {
		DescribeTable("are reported as transfer decode errors",
			func(encoded string) {
				result, err := transfer.Decode(encoded)
				Expect(result).To(BeNil())
				var decodeErr *transfer.ErrTransferDecode
				Expect(errors.As(err, &decodeErr)).To(BeTrue())
			},
			Entry("bad percent escape", "%7B%ZZ"),
			Entry("not JSON", "hello"),
			Entry("truncated JSON", "%7B%22score%22%3A"),
			Entry("empty", ""),
			Entry("null", "null"),
		)

		It("keeps an empty object as an empty result", func() {
			result, err := transfer.Decode("%7B%7D")
			Expect(err).To(BeNil())
			Expect(result).NotTo(BeNil())
			Expect(result.IsEmpty()).To(BeTrue())
		})

		It("reports a missing data parameter", func() {
			_, err := transfer.FromQuery(url.Values{})
			var decodeErr *transfer.ErrTransferDecode
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
		})
	})

	Context("links", func() {
		It("builds token URLs", func() {
			Expect(transfer.TokenURL("http://localhost:3000/results", "abc-123")).To(Equal("http://localhost:3000/results?id=abc-123"))
		})

		It("flags URLs above the length threshold", func() {
			Expect(transfer.TooLong("http://x/" + strings.Repeat("a", transfer.MaxURLLength))).To(BeTrue())
			Expect(transfer.TooLong("http://x/results?data=%7B%7D")).To(BeFalse())
		})
	})
})
