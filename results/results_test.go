package results_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/results"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *results.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = results.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)
	})

	run := func(config predictor.Config, digest string, preds, misses uint64) results.Run {
		e, err := predictor.NewEngine(config)
		Expect(err).NotTo(HaveOccurred())

		r := results.NewRun(e.Snapshot(), "trace.txt", digest)
		r.Predictions = preds
		r.Mispredictions = misses
		return r
	}

	It("should record and list runs", func() {
		id, err := store.Record(ctx, run(predictor.HybridConfig(8, 14, 10, 5), "aa", 100, 7))
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(1)))

		runs, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].Config).To(Equal(predictor.HybridConfig(8, 14, 10, 5)))
		Expect(runs[0].TraceDigest).To(Equal("aa"))

		rate, err := runs[0].MispredictionRate()
		Expect(err).NotTo(HaveOccurred())
		Expect(rate).To(BeNumerically("~", 7.0))
	})

	It("should rank runs of the same trace by misprediction rate", func() {
		_, err := store.Record(ctx, run(predictor.BimodalConfig(6), "aa", 100, 20))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Record(ctx, run(predictor.GshareConfig(9, 3), "aa", 100, 10))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Record(ctx, run(predictor.GshareConfig(9, 9), "bb", 100, 1))
		Expect(err).NotTo(HaveOccurred())

		runs, err := store.ForTrace(ctx, "aa")
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(2))
		Expect(runs[0].Config.Variant).To(Equal(predictor.Gshare))
		Expect(runs[1].Config.Variant).To(Equal(predictor.Bimodal))
	})

	It("should persist to a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "runs.db")

		s, err := results.Open(path)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Record(ctx, run(predictor.BimodalConfig(4), "cc", 10, 2))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		s, err = results.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		runs, err := s.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].Config).To(Equal(predictor.BimodalConfig(4)))
	})
})
