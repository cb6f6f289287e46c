package store_test

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/config"
	st "github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pitchpilot/pitch-analyzer/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func newTestStore(dir string) (st.Store, *gorm.DB) {
	cfg, err := config.Load()
	Expect(err).To(BeNil())
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "pitch.db")

	db, err := st.InitDB(cfg)
	Expect(err).To(BeNil())

	s := st.NewStore(db)
	Expect(s.InitialMigration(context.TODO())).To(BeNil())
	return s, db
}

func sampleResult(overall float64) *analysis.Result {
	return &analysis.Result{
		Feedback: &analysis.Feedback{
			Strengths: "Clear problem statement. Strong team.",
		},
		Score: &analysis.Score{
			Clarity: 6.5,
			Overall: overall,
		},
	}
}

// hookedResults runs beforeReturn after reading a result and before handing
// it back, to interleave other calls with a lookup.
type hookedResults struct {
	st.Results
	beforeReturn func()
}

func (h *hookedResults) GetByToken(ctx context.Context, token string) (*model.SharedResult, error) {
	r, err := h.Results.GetByToken(ctx, token)
	if h.beforeReturn != nil {
		h.beforeReturn()
	}
	return r, err
}

var _ = Describe("Store", func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeEach(func() {
		store, gormDB = newTestStore(GinkgoT().TempDir())
	})

	AfterEach(func() {
		Expect(store.Close()).To(BeNil())
	})

	Context("transaction", func() {
		It("commits a shared result", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			r, err := model.NewSharedResult(uuid.NewString(), "Acme", sampleResult(7), time.Hour)
			Expect(err).To(BeNil())
			_, err = store.Results().Create(ctx, r)
			Expect(err).To(BeNil())

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) FROM shared_results;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rolls back a shared result", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			r, err := model.NewSharedResult(uuid.NewString(), "Acme", sampleResult(7), time.Hour)
			Expect(err).To(BeNil())
			_, err = store.Results().Create(ctx, r)
			Expect(err).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) FROM shared_results;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("reuses the transaction already in the context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			again, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(again)).To(BeIdenticalTo(st.FromContext(ctx)))
			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())
		})
	})

	Context("results", func() {
		It("creates and reads back a shared result", func() {
			token := uuid.NewString()
			r, err := model.NewSharedResult(token, "Acme", sampleResult(7), time.Hour)
			Expect(err).To(BeNil())

			created, err := store.Results().Create(context.TODO(), r)
			Expect(err).To(BeNil())
			Expect(created.Token).To(Equal(token))

			got, err := store.Results().GetByToken(context.TODO(), token)
			Expect(err).To(BeNil())
			Expect(got.Title).To(Equal("Acme"))

			result, err := got.Result()
			Expect(err).To(BeNil())
			Expect(result.Score.Overall).To(Equal(7.0))
			Expect(result.Feedback.Strengths).To(Equal("Clear problem statement. Strong team."))
		})

		It("rejects a duplicate token", func() {
			token := uuid.NewString()
			r, err := model.NewSharedResult(token, "Acme", sampleResult(7), 0)
			Expect(err).To(BeNil())

			_, err = store.Results().Create(context.TODO(), r)
			Expect(err).To(BeNil())
			_, err = store.Results().Create(context.TODO(), r)
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		It("does not return unknown tokens", func() {
			_, err := store.Results().GetByToken(context.TODO(), "missing")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("does not return expired results", func() {
			r, err := model.NewSharedResult(uuid.NewString(), "Old", sampleResult(3), time.Hour)
			Expect(err).To(BeNil())
			past := time.Now().UTC().Add(-time.Minute)
			r.ExpiresAt = &past

			_, err = store.Results().Create(context.TODO(), r)
			Expect(err).To(BeNil())

			_, err = store.Results().GetByToken(context.TODO(), r.Token)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("deletes a result", func() {
			r, err := model.NewSharedResult(uuid.NewString(), "Acme", sampleResult(7), 0)
			Expect(err).To(BeNil())
			_, err = store.Results().Create(context.TODO(), r)
			Expect(err).To(BeNil())

			// warm the cache first
			_, err = store.Results().GetByToken(context.TODO(), r.Token)
			Expect(err).To(BeNil())

			Expect(store.Results().Delete(context.TODO(), r.Token)).To(BeNil())
			_, err = store.Results().GetByToken(context.TODO(), r.Token)
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			Expect(store.Results().Delete(context.TODO(), r.Token)).To(MatchError(st.ErrRecordNotFound))
		})

		It("does not cache a result deleted during its lookup", func() {
			hooked := &hookedResults{Results: st.NewResultStore(gormDB)}
			cache := st.NewCacheResultStore(hooked)

			r, err := model.NewSharedResult(uuid.NewString(), "Acme", sampleResult(7), time.Hour)
			Expect(err).To(BeNil())
			_, err = cache.Create(context.TODO(), r)
			Expect(err).To(BeNil())

			hooked.beforeReturn = func() {
				hooked.beforeReturn = nil
				Expect(cache.Delete(context.TODO(), r.Token)).To(Succeed())
			}
			got, err := cache.GetByToken(context.TODO(), r.Token)
			Expect(err).To(BeNil())
			Expect(got.Token).To(Equal(r.Token))

			_, err = cache.GetByToken(context.TODO(), r.Token)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("deletes only expired results", func() {
			now := time.Now().UTC()

			expired, err := model.NewSharedResult("expired", "Old", sampleResult(3), time.Hour)
			Expect(err).To(BeNil())
			past := now.Add(-time.Minute)
			expired.ExpiresAt = &past

			active, err := model.NewSharedResult("active", "New", sampleResult(8), time.Hour)
			Expect(err).To(BeNil())

			forever, err := model.NewSharedResult("forever", "Kept", sampleResult(5), 0)
			Expect(err).To(BeNil())

			for _, r := range []model.SharedResult{expired, active, forever} {
				_, err := store.Results().Create(context.TODO(), r)
				Expect(err).To(BeNil())
			}

			n, err := store.Results().DeleteExpired(context.TODO(), now)
			Expect(err).To(BeNil())
			Expect(n).To(BeEquivalentTo(1))

			list, err := store.Results().List(context.TODO(), nil, st.NewResultQueryOptions().WithSortOrder(st.SortByToken))
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Token).To(Equal("active"))
			Expect(list[1].Token).To(Equal("forever"))
		})

		It("filters the list", func() {
			now := time.Now().UTC()

			a, _ := model.NewSharedResult("a", "Acme", sampleResult(7), time.Hour)
			b, _ := model.NewSharedResult("b", "Beta", sampleResult(4), time.Hour)
			c, _ := model.NewSharedResult("c", "Acme", sampleResult(9), time.Hour)
			past := now.Add(-time.Minute)
			c.ExpiresAt = &past

			for _, r := range []model.SharedResult{a, b, c} {
				_, err := store.Results().Create(context.TODO(), r)
				Expect(err).To(BeNil())
			}

			list, err := store.Results().List(context.TODO(), st.NewResultQueryFilter().ByTitle("Acme"), st.NewResultQueryOptions().WithSortOrder(st.SortByToken))
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(2))

			list, err = store.Results().List(context.TODO(), st.NewResultQueryFilter().ByTitle("Acme").Active(now), nil)
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Token).To(Equal("a"))

			list, err = store.Results().List(context.TODO(), nil, st.NewResultQueryOptions().WithSortOrder(st.SortByToken).WithLimit(1))
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Token).To(Equal("a"))
		})
	})
})
