package presenter_test

import (
	"math"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("presenter", func() {
	Context("score buckets", func() {
		DescribeTable("color bucket",
			func(score float64, expected presenter.Bucket) {
				Expect(presenter.ScoreColorBucket(score)).To(Equal(expected))
			},
			Entry("ten", 10.0, presenter.BucketStrong),
			Entry("eight", 8.0, presenter.BucketStrong),
			Entry("just below eight", 7.99, presenter.BucketModerate),
			Entry("six", 6.0, presenter.BucketModerate),
			Entry("just below six", 5.99, presenter.BucketWeak),
			Entry("zero", 0.0, presenter.BucketWeak),
		)

		DescribeTable("label",
			func(score float64, expected string) {
				Expect(presenter.ScoreLabel(score)).To(Equal(expected))
			},
			Entry("8 is excellent", 8.0, "Excellent"),
			Entry("7.9 is good", 7.9, "Good"),
			Entry("6 is good", 6.0, "Good"),
			Entry("5.9 is fair", 5.9, "Fair"),
			Entry("4 is fair", 4.0, "Fair"),
			Entry("3.9 needs improvement", 3.9, "Needs Improvement"),
			Entry("negative needs improvement", -1.0, "Needs Improvement"),
		)

		It("keeps labels monotone in the score", func() {
			rank := map[string]int{"Needs Improvement": 0, "Fair": 1, "Good": 2, "Excellent": 3}
			prev := -1
			for s := 0.0; s <= 10.0; s += 0.1 {
				r := rank[presenter.ScoreLabel(s)]
				Expect(r).To(BeNumerically(">=", prev))
				prev = r
			}
		})
	})

	Context("bar width", func() {
		DescribeTable("is clamped to [0,100]",
			func(score float64, expected float64) {
				Expect(presenter.BarWidth(score)).To(BeNumerically("~", expected, 1e-9))
			},
			Entry("zero", 0.0, 0.0),
			Entry("seven and a half", 7.5, 75.0),
			Entry("ten", 10.0, 100.0),
			Entry("above range", 12.0, 100.0),
			Entry("below range", -3.0, 0.0),
			Entry("not a number", math.NaN(), 0.0),
		)
	})

	Context("excerpt", func() {
		It("takes the text before the first period", func() {
			Expect(presenter.Excerpt("Great team. Strong IP.")).To(Equal("Great team"))
		})

		It("returns the whole text without a period", func() {
			Expect(presenter.Excerpt("Great team")).To(Equal("Great team"))
		})

		It("uses the placeholder for absent text", func() {
			Expect(presenter.Excerpt("")).To(Equal(presenter.Placeholder))
			Expect(presenter.Excerpt("  ")).To(Equal(presenter.Placeholder))
		})
	})

	Context("Present", func() {
		It("returns the empty view for no result", func() {
			v := presenter.Present(nil)
			Expect(v.Empty).To(BeTrue())
		})

		It("builds every block of a full result", func() {
			v := presenter.Present(&analysis.Result{
				Feedback: &analysis.Feedback{
					Overall:       "Promising.",
					Strengths:     "Great team. Strong IP.",
					Weaknesses:    "No revenue yet.",
					Opportunities: "Large market.",
					Threats:       "Incumbents.",
					Suggestions:   "Add traction slide.",
				},
				Score: &analysis.Score{Clarity: 7.5, Differentiation: 8, Traction: 3, Scalability: 6, Overall: 6.5},
			})

			Expect(v.Empty).To(BeFalse())
			Expect(v.Overall).NotTo(BeNil())
			Expect(v.Overall.Display).To(Equal("6.5"))
			Expect(v.Overall.Label).To(Equal("Good"))

			names := []string{}
			for _, d := range v.Dimensions {
				names = append(names, d.Name)
			}
			Expect(names).To(Equal([]string{"clarity", "differentiation", "traction", "scalability"}))
			Expect(v.Dimensions[0].Title).To(Equal("Clarity"))
			Expect(v.Dimensions[0].BarWidth).To(BeNumerically("~", 75.0, 1e-9))
			Expect(v.Dimensions[2].Bucket).To(Equal(presenter.BucketWeak))

			Expect(v.Highlights).To(HaveLen(3))
			Expect(v.Highlights[0].Text).To(Equal("Great team"))
			Expect(v.Highlights[1].Text).To(Equal("No revenue yet"))
			Expect(v.Highlights[2].Text).To(Equal("Large market"))

			Expect(v.Sections).To(HaveLen(5))
			Expect(v.Assessment).To(Equal("Promising."))
		})

		It("omits the score blocks when there is no score", func() {
			v := presenter.Present(&analysis.Result{Feedback: &analysis.Feedback{Strengths: "Team."}})
			Expect(v.Overall).To(BeNil())
			Expect(v.Dimensions).To(BeEmpty())
			Expect(v.Sections).NotTo(BeEmpty())
		})

		It("uses placeholders for highlights when there is no feedback", func() {
			v := presenter.Present(&analysis.Result{Score: &analysis.Score{Overall: 9}})
			Expect(v.Sections).To(BeEmpty())
			for _, h := range v.Highlights {
				Expect(h.Text).To(Equal(presenter.Placeholder))
			}
		})
	})
})
