package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
	"github.com/pitchpilot/pitch-analyzer/internal/transfer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const analysisReply = `{
	"pitch": {"pitch_text": "We sell shovels."},
	"feedback": {
		"overall_feedback": "Solid. Needs numbers.",
		"strengths": "Clear problem. Good team.",
		"weaknesses": "No revenue.",
		"opportunities": "Partnerships.",
		"threats": "Incumbents.",
		"suggestions": "Run a pilot."
	},
	"score": {"clarity": 8, "differentiation": 6, "traction": 3, "scalability": 7, "overall": 7}
}`

func writeDocument(dir string) string {
	p := filepath.Join(dir, "pitch.txt")
	Expect(os.WriteFile(p, []byte("We sell shovels to gold miners."), 0600)).To(Succeed())
	return p
}

var _ = Describe("cli", func() {
	var (
		service  *httptest.Server
		viewer   *httptest.Server
		calls    atomic.Int32
		status   atomic.Int32
		out      *bytes.Buffer
		docPath  string
		globals  GlobalOptions
		shareHit atomic.Int32
		uploadMu sync.Mutex
		uploads  []string
	)

	uploaded := func() []string {
		uploadMu.Lock()
		defer uploadMu.Unlock()
		return append([]string(nil), uploads...)
	}

	BeforeEach(func() {
		calls.Store(0)
		shareHit.Store(0)
		status.Store(http.StatusOK)
		uploadMu.Lock()
		uploads = nil
		uploadMu.Unlock()
		out = &bytes.Buffer{}
		docPath = writeDocument(GinkgoT().TempDir())

		service = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			switch {
			case r.URL.Path == "/health":
				_, _ = w.Write([]byte(`{"status":"healthy"}`))
			case r.URL.Path == "/api/analyze" || strings.HasPrefix(r.URL.Path, "/api/analysis/"):
				if f, h, err := r.FormFile("file"); err == nil {
					_ = f.Close()
					uploadMu.Lock()
					uploads = append(uploads, h.Filename)
					uploadMu.Unlock()
				}
				w.WriteHeader(int(status.Load()))
				if status.Load() == http.StatusOK {
					_, _ = w.Write([]byte(analysisReply))
				} else {
					_, _ = w.Write([]byte(`{"detail":"boom"}`))
				}
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		viewer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/api/results" {
				shareHit.Add(1)
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"token":"6b1d3c9e-0f43-4c9b-9a55-1f5b5a2e7f10"}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))

		globals = GlobalOptions{
			ServerUrl:  service.URL,
			ResultsUrl: viewer.URL + "/results",
			Timeout:    5 * time.Second,
			LogLevel:   "error",
		}
	})

	AfterEach(func() {
		service.Close()
		viewer.Close()
	})

	Context("submit", func() {
		newSubmit := func() *SubmitOptions {
			o := DefaultSubmitOptions()
			o.GlobalOptions = globals
			o.out = out
			o.File = docPath
			o.Title = "Shovels Inc"
			o.Focus = "market"
			return o
		}

		It("prints the analysis as json", func() {
			o := newSubmit()
			o.Output = jsonFormat
			Expect(o.Run(context.TODO(), nil)).To(Succeed())

			var result analysis.Result
			Expect(json.Unmarshal(out.Bytes(), &result)).To(Succeed())
			Expect(result.Score.Overall).To(Equal(7.0))
			Expect(calls.Load()).To(BeEquivalentTo(1))
		})

		It("prints the results url carrying the data", func() {
			o := newSubmit()
			o.Output = yamlFormat
			o.OpenURL = true
			Expect(o.Run(context.TODO(), nil)).To(Succeed())

			Expect(out.String()).To(ContainSubstring("overall: 7"))
			idx := strings.Index(out.String(), "Results: ")
			Expect(idx).To(BeNumerically(">=", 0))

			u := strings.TrimSpace(out.String()[idx+len("Results: "):])
			Expect(u).To(HavePrefix(viewer.URL + "/results?data="))
			result, err := transfer.FromURL(u)
			Expect(err).To(BeNil())
			Expect(result.Feedback.Strengths).To(Equal("Clear problem. Good team."))
		})

		It("shares the result by token", func() {
			o := newSubmit()
			o.Output = csvFormat
			o.Share = true
			Expect(o.Run(context.TODO(), nil)).To(Succeed())

			Expect(shareHit.Load()).To(BeEquivalentTo(1))
			Expect(out.String()).To(ContainSubstring("Results: " + viewer.URL + "/results?id=6b1d3c9e-0f43-4c9b-9a55-1f5b5a2e7f10"))
		})

		It("does not call the service for an incomplete request", func() {
			o := newSubmit()
			o.Focus = "  "
			Expect(o.Run(context.TODO(), nil)).NotTo(Succeed())
			Expect(calls.Load()).To(BeZero())
		})

		It("reports service failures with their kind", func() {
			status.Store(http.StatusInternalServerError)
			o := newSubmit()
			err := o.Run(context.TODO(), nil)
			Expect(err).To(MatchError(ContainSubstring("analysis failed (service)")))
			Expect(out.Len()).To(BeZero())
		})

		It("rejects unknown output formats", func() {
			o := newSubmit()
			o.Output = "xml"
			Expect(o.Validate(nil)).To(MatchError(ContainSubstring("output format must be one of")))
		})

		It("requires a document", func() {
			o := newSubmit()
			o.File = ""
			Expect(o.Validate(nil)).NotTo(Succeed())
		})
	})

	Context("get", func() {
		It("prints a previous analysis", func() {
			o := DefaultGetOptions()
			o.GlobalOptions = globals
			o.out = out
			o.Output = htmlFormat
			Expect(o.Run(context.TODO(), []string{"abc"})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<html"))
			Expect(out.String()).To(ContainSubstring("Good"))
		})

		It("fails for unknown analyses", func() {
			status.Store(http.StatusNotFound)
			o := DefaultGetOptions()
			o.GlobalOptions = globals
			o.out = out
			Expect(o.Run(context.TODO(), []string{"abc"})).To(MatchError(ContainSubstring("reading analysis abc")))
		})
	})

	Context("health", func() {
		It("prints the service status", func() {
			o := DefaultHealthOptions()
			o.GlobalOptions = globals
			o.out = out
			Expect(o.Run(context.TODO(), nil)).To(Succeed())
			Expect(out.String()).To(Equal(service.URL + ": healthy\n"))
		})
	})

	Context("decode", func() {
		It("decodes a results url", func() {
			var result analysis.Result
			Expect(json.Unmarshal([]byte(analysisReply), &result)).To(Succeed())
			u, err := transfer.ResultsURL("http://localhost:3000/results", &result)
			Expect(err).To(BeNil())

			o := DefaultDecodeOptions()
			o.out = out
			o.Output = jsonFormat
			Expect(o.Run(context.TODO(), []string{u})).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`"overall": 7`))
		})

		It("prints the empty view for broken data", func() {
			o := DefaultDecodeOptions()
			o.out = out
			o.Output = csvFormat
			Expect(o.Run(context.TODO(), []string{"data=%7Bbroken"})).To(Succeed())
			Expect(out.String()).To(ContainSubstring(presenter.EmptyTitle))
		})
	})

	Context("version", func() {
		It("prints the version as json", func() {
			o := DefaultVersionOptions()
			o.out = out
			o.Output = jsonFormat
			Expect(o.Run(context.TODO(), nil)).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`"gitVersion"`))
		})

		It("rejects other formats", func() {
			o := DefaultVersionOptions()
			o.out = out
			o.Output = csvFormat
			Expect(o.Run(context.TODO(), nil)).NotTo(Succeed())
		})
	})

	Context("global options", func() {
		It("reads the client config file", func() {
			dir := GinkgoT().TempDir()
			cfgPath := filepath.Join(dir, "client.yaml")
			Expect(os.WriteFile(cfgPath, []byte("service:\n  server: http://analysis.test\n  results: http://viewer.test/results\n  timeout: 30s\n"), 0600)).To(Succeed())

			cmd := NewCmdHealth()
			Expect(cmd.Flags().Set("config", cfgPath)).To(Succeed())
			Expect(cmd.Flags().Set("log-level", "error")).To(Succeed())

			o := DefaultGlobalOptions()
			o.ConfigFilePath = cfgPath
			o.LogLevel = "error"
			Expect(o.Complete(cmd, nil)).To(Succeed())
			Expect(o.ServerUrl).To(Equal("http://analysis.test"))
			Expect(o.ResultsUrl).To(Equal("http://viewer.test/results"))
			Expect(o.Timeout).To(Equal(30 * time.Second))
		})

		It("keeps flags over the config file", func() {
			dir := GinkgoT().TempDir()
			cfgPath := filepath.Join(dir, "client.yaml")
			Expect(os.WriteFile(cfgPath, []byte("service:\n  server: http://analysis.test\n"), 0600)).To(Succeed())

			cmd := NewCmdHealth()
			Expect(cmd.Flags().Set("server-url", "http://flag.test")).To(Succeed())

			o := DefaultGlobalOptions()
			o.ServerUrl = "http://flag.test"
			o.ConfigFilePath = cfgPath
			o.LogLevel = "error"
			Expect(o.Complete(cmd, nil)).To(Succeed())
			Expect(o.ServerUrl).To(Equal("http://flag.test"))
		})

		It("ignores a missing default config file", func() {
			o := DefaultGlobalOptions()
			o.ConfigFilePath = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			o.LogLevel = "error"
			Expect(o.Complete(NewCmdHealth(), nil)).To(Succeed())
		})

		DescribeTable("viewer base",
			func(resultsURL, expected string, shouldFail bool) {
				base, err := viewerBase(resultsURL)
				if shouldFail {
					Expect(err).NotTo(BeNil())
					return
				}
				Expect(err).To(BeNil())
				Expect(base).To(Equal(expected))
			},
			Entry("results path", "http://localhost:3000/results", "http://localhost:3000", false),
			Entry("trailing slash", "http://localhost:3000/results/", "http://localhost:3000", false),
			Entry("prefix", "https://example.com/app/results?x=1", "https://example.com/app", false),
			Entry("no host", "/results", "", true),
		)
	})

	Context("watch", func() {
		It("submits documents dropped into the folder", func() {
			dir := GinkgoT().TempDir()
			o := DefaultWatchOptions()
			o.GlobalOptions = globals
			o.out = out
			o.Title = "Shovels Inc"
			o.Focus = "market"
			o.Output = jsonFormat
			o.Settle = 20 * time.Millisecond
			Expect(o.Validate([]string{dir})).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() {
				errCh <- o.Run(ctx, []string{dir})
			}()

			Eventually(func() int32 {
				Expect(os.WriteFile(filepath.Join(dir, "deck.txt"), []byte("We sell shovels."), 0600)).To(Succeed())
				return calls.Load()
			}, 5*time.Second, 200*time.Millisecond).Should(BeNumerically(">=", 1))

			cancel()
			Eventually(errCh, 5*time.Second).Should(Receive(BeNil()))
			Expect(out.String()).To(ContainSubstring("pitch_text"))
		})

		It("submits the document of each drop", func() {
			dir := GinkgoT().TempDir()
			first := filepath.Join(dir, "first.txt")
			second := filepath.Join(dir, "second.txt")
			Expect(os.WriteFile(first, []byte("First pitch."), 0600)).To(Succeed())
			Expect(os.WriteFile(second, []byte("Second pitch."), 0600)).To(Succeed())

			o := DefaultWatchOptions()
			o.GlobalOptions = globals
			o.out = out
			o.Title = "Shovels Inc"
			o.Focus = "market"
			o.Output = jsonFormat

			controller, done := o.Controller(out)
			defer done()

			o.analyze(context.TODO(), controller, first)
			o.analyze(context.TODO(), controller, second)
			Expect(uploaded()).To(Equal([]string{"first.txt", "second.txt"}))
		})

		It("rejects a folder that does not exist", func() {
			o := DefaultWatchOptions()
			o.GlobalOptions = globals
			Expect(o.Validate([]string{filepath.Join(GinkgoT().TempDir(), "missing")})).NotTo(Succeed())
		})
	})

	Context("debouncer", func() {
		It("runs once per burst", func() {
			var runs atomic.Int32
			d := newDebouncer(50 * time.Millisecond)
			for i := 0; i < 5; i++ {
				d.Trigger("a", func() { runs.Add(1) })
			}
			d.Trigger("b", func() { runs.Add(1) })

			Eventually(runs.Load).Should(BeEquivalentTo(2))
			Consistently(runs.Load, 200*time.Millisecond).Should(BeEquivalentTo(2))
			d.Stop()
		})

		It("drops pending callbacks on stop", func() {
			var runs atomic.Int32
			d := newDebouncer(time.Hour)
			d.Trigger("a", func() { runs.Add(1) })
			d.Stop()
			d.Trigger("b", func() { runs.Add(1) })
			Expect(runs.Load()).To(BeZero())
		})
	})
})
