package predictor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/predictor"
)

var _ = Describe("BranchProfiler", func() {
	var (
		e        *predictor.Engine
		profiler *predictor.BranchProfiler
	)

	BeforeEach(func() {
		var err error
		e, err = predictor.NewEngine(predictor.BimodalConfig(4))
		Expect(err).NotTo(HaveOccurred())

		profiler = predictor.NewBranchProfiler()
		e.AcceptHook(profiler)
	})

	It("should count per-address mispredictions", func() {
		// 0x10 misses once then learns; 0x20 is always taken.
		for i := 0; i < 4; i++ {
			e.PredictAndUpdate(0x10, predictor.NotTaken)
			e.PredictAndUpdate(0x20, predictor.Taken)
		}
		e.PredictAndUpdate(0x30, predictor.NotTaken)

		Expect(profiler.NumBranches()).To(Equal(3))

		s, ok := profiler.Lookup(0x10)
		Expect(ok).To(BeTrue())
		Expect(s.Predictions).To(Equal(uint64(4)))
		Expect(s.Mispredictions).To(Equal(uint64(1)))

		s, _ = profiler.Lookup(0x20)
		Expect(s.Mispredictions).To(BeZero())

		_, ok = profiler.Lookup(0x40)
		Expect(ok).To(BeFalse())
	})

	It("should rank branches by mispredictions then address", func() {
		e.PredictAndUpdate(0x30, predictor.NotTaken)
		e.PredictAndUpdate(0x10, predictor.NotTaken)
		e.PredictAndUpdate(0x20, predictor.Taken)

		top := profiler.Top(2)
		Expect(top).To(HaveLen(2))
		Expect(top[0].Address).To(Equal(uint64(0x10)))
		Expect(top[1].Address).To(Equal(uint64(0x30)))

		Expect(profiler.Top(10)).To(HaveLen(3))
	})
})
