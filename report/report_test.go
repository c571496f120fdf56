package report_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sugawarayuuta/sonnet"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/report"
)

var _ = Describe("Report", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("should echo the command line", func() {
		config := predictor.HybridConfig(8, 14, 10, 5)
		Expect(report.WriteCommand(buf, "sim", config, "gcc_trace.txt")).To(Succeed())
		Expect(buf.String()).To(Equal("COMMAND\nsim hybrid 8 14 10 5 gcc_trace.txt\n"))
	})

	It("should print a bimodal run", func() {
		e, _ := predictor.NewEngine(predictor.BimodalConfig(2))
		for i := 0; i < 3; i++ {
			e.PredictAndUpdate(0x4, predictor.NotTaken)
		}

		Expect(report.Write(buf, e.Snapshot())).To(Succeed())
		Expect(buf.String()).To(Equal(
			"OUTPUT\n" +
				"number of predictions: 3\n" +
				"number of mispredictions: 1\n" +
				"misprediction rate: 33.33%\n" +
				"FINAL BIMODAL CONTENTS\n" +
				" 0\t2\n 1\t0\n 2\t2\n 3\t2\n"))
	})

	It("should print hybrid tables as chooser, gshare, bimodal", func() {
		e, _ := predictor.NewEngine(predictor.HybridConfig(1, 1, 1, 1))
		e.PredictAndUpdate(0x0, predictor.Taken)

		Expect(report.Write(buf, e.Snapshot())).To(Succeed())
		Expect(buf.String()).To(HaveSuffix(
			"misprediction rate: 0.00%\n" +
				"FINAL CHOOSER CONTENTS\n 0\t1\n 1\t1\n" +
				"FINAL GSHARE CONTENTS\n 0\t2\n 1\t2\n" +
				"FINAL BIMODAL CONTENTS\n 0\t3\n 1\t2\n"))
	})

	It("should refuse to report an empty run", func() {
		e, _ := predictor.NewEngine(predictor.GshareConfig(2, 1))
		Expect(report.Write(buf, e.Snapshot())).To(MatchError(predictor.ErrNoPredictions))

		_, err := report.New(e.Snapshot(), "", "")
		Expect(err).To(MatchError(predictor.ErrNoPredictions))
	})

	It("should encode JSON", func() {
		e, _ := predictor.NewEngine(predictor.GshareConfig(2, 2))
		e.PredictAndUpdate(0x8, predictor.Taken)

		r, err := report.New(e.Snapshot(), "t.txt", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.WriteJSON(buf)).To(Succeed())

		var decoded map[string]any
		Expect(sonnet.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded["config"]).To(HaveKeyWithValue("predictor", "gshare"))
		Expect(decoded["predictions"]).To(BeNumerically("==", 1))
		Expect(decoded["trace_sha3"]).To(Equal("abc"))

		tables := decoded["tables"].([]any)
		Expect(tables).To(HaveLen(1))
		Expect(tables[0]).To(HaveKeyWithValue("counters", []any{2.0, 2.0, 3.0, 2.0}))
	})
})
