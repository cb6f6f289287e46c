package client_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/client"
	"github.com/pitchpilot/pitch-analyzer/internal/intake"
	"github.com/pitchpilot/pitch-analyzer/pkg/requestid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("analysis client", func() {
	var (
		ctx context.Context
		req *analysis.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		doc := intake.NewDocument("acme.txt", intake.MediaTypeTXT, []byte("Acme sells rockets."))
		req = analysis.Build(doc, "Acme Deck", "", "evaluate market sizing")
		Expect(req).NotTo(BeNil())
	})

	Describe("Submit", func() {
		Context("successful requests", func() {
			It("posts the multipart form and decodes the result", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(r.Method).To(Equal(http.MethodPost))
					Expect(r.URL.Path).To(Equal("/api/analyze"))
					Expect(r.Header.Get("X-Request-Id")).NotTo(BeEmpty())

					Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
					Expect(r.FormValue("pitch_title")).To(Equal("Acme Deck"))
					Expect(r.FormValue("description")).To(Equal(""))
					Expect(r.FormValue("user_query")).To(Equal("evaluate market sizing"))
					_, header, err := r.FormFile("file")
					Expect(err).To(BeNil())
					Expect(header.Filename).To(Equal("acme.txt"))

					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{"score":{"clarity":6,"differentiation":7,"traction":5,"scalability":8,"overall":7}}`))
				}))
				defer server.Close()

				c := client.NewAnalysisClient(server.URL)
				result, err := c.Submit(ctx, req)
				Expect(err).To(BeNil())
				Expect(result).NotTo(BeNil())
				Expect(result.Score).NotTo(BeNil())
				Expect(result.Score.Overall).To(Equal(7.0))
				Expect(result.Feedback).To(BeNil())
				Expect(result.Pitch).To(BeNil())
			})

			It("forwards the request id from the context", func() {
				var received string
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					received = r.Header.Get("X-Request-Id")
					_, _ = w.Write([]byte(`{}`))
				}))
				defer server.Close()

				c := client.NewAnalysisClient(server.URL + "/")
				_, err := c.Submit(requestid.ToContext(ctx, "req-123"), req)
				Expect(err).To(BeNil())
				Expect(received).To(Equal("req-123"))
			})
		})

		Context("error handling", func() {
			It("returns a service error on non-2xx status", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}))
				defer server.Close()

				result, err := client.NewAnalysisClient(server.URL).Submit(ctx, req)
				Expect(result).To(BeNil())

				var serviceErr *client.ErrService
				Expect(errors.As(err, &serviceErr)).To(BeTrue())
				Expect(serviceErr.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(serviceErr.Body).To(Equal("Internal Server Error"))
			})

			It("returns a decode error on a malformed body", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(`{"score":{"overall":"seven"`))
				}))
				defer server.Close()

				result, err := client.NewAnalysisClient(server.URL).Submit(ctx, req)
				Expect(result).To(BeNil())

				var decodeErr *client.ErrDecode
				Expect(errors.As(err, &decodeErr)).To(BeTrue())
			})

			It("returns a transport error when the service is unreachable", func() {
				listener, err := net.Listen("tcp", "127.0.0.1:0")
				Expect(err).To(BeNil())
				addr := listener.Addr().String()
				Expect(listener.Close()).To(Succeed())

				result, err := client.NewAnalysisClient("http://"+addr, client.WithTimeout(2*time.Second)).Submit(ctx, req)
				Expect(result).To(BeNil())

				var transportErr *client.ErrTransport
				Expect(errors.As(err, &transportErr)).To(BeTrue())
			})

			It("surfaces context cancellation", func() {
				block := make(chan struct{})
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					<-block
				}))
				defer server.Close()
				defer close(block)

				cctx, cancel := context.WithCancel(ctx)
				go func() {
					time.Sleep(100 * time.Millisecond)
					cancel()
				}()

				_, err := client.NewAnalysisClient(server.URL).Submit(cctx, req)
				Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			})

			It("applies the timeout without touching the given http client", func() {
				block := make(chan struct{})
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					<-block
				}))
				defer server.Close()
				defer close(block)

				shared := &http.Client{}
				c := client.NewAnalysisClient(server.URL,
					client.WithTimeout(100*time.Millisecond),
					client.WithHTTPClient(shared))

				_, err := c.Submit(ctx, req)
				var transportErr *client.ErrTransport
				Expect(errors.As(err, &transportErr)).To(BeTrue())
				Expect(shared.Timeout).To(BeZero())
			})

			It("does not send an incomplete request", func() {
				called := false
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					called = true
				}))
				defer server.Close()

				_, err := client.NewAnalysisClient(server.URL).Submit(ctx, &analysis.Request{Title: "Acme"})
				var invalid *analysis.ErrInvalidRequest
				Expect(errors.As(err, &invalid)).To(BeTrue())
				Expect(called).To(BeFalse())
			})
		})
	})

	Describe("GetAnalysis", func() {
		It("fetches an analysis by id", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/api/analysis/abc-123"))
				_, _ = w.Write([]byte(`{"feedback":{"overall_feedback":"Solid.","strengths":"Team.","weaknesses":"","opportunities":"","threats":"","suggestions":""}}`))
			}))
			defer server.Close()

			result, err := client.NewAnalysisClient(server.URL).GetAnalysis(ctx, "abc-123")
			Expect(err).To(BeNil())
			Expect(result.Feedback).NotTo(BeNil())
			Expect(result.Feedback.Overall).To(Equal("Solid."))
		})

		It("returns a service error for an unknown id", func() {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			_, err := client.NewAnalysisClient(server.URL).GetAnalysis(ctx, "missing")
			var serviceErr *client.ErrService
			Expect(errors.As(err, &serviceErr)).To(BeTrue())
			Expect(serviceErr.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects an empty id", func() {
			_, err := client.NewAnalysisClient("http://localhost:8000").GetAnalysis(ctx, " ")
			Expect(err).NotTo(BeNil())
		})
	})

	Describe("Health", func() {
		It("returns the service status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/health"))
				_, _ = w.Write([]byte(`{"status":"healthy and running"}`))
			}))
			defer server.Close()

			status, err := client.NewAnalysisClient(server.URL).Health(ctx)
			Expect(err).To(BeNil())
			Expect(status.Status).To(Equal("healthy and running"))
		})
	})
})
