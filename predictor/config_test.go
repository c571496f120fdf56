package predictor_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/predictor"
)

var _ = Describe("Config", func() {
	Describe("ParseVariant", func() {
		It("should resolve the three predictor names", func() {
			for name, want := range map[string]predictor.Variant{
				"bimodal": predictor.Bimodal,
				"gshare":  predictor.Gshare,
				"hybrid":  predictor.Hybrid,
			} {
				v, err := predictor.ParseVariant(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(want))
				Expect(v.String()).To(Equal(name))
			}
		})

		It("should not accept abbreviations", func() {
			_, err := predictor.ParseVariant("gsh")
			Expect(err).To(MatchError(predictor.ErrUnknownVariant))
			Expect(err.Error()).To(ContainSubstring("did you mean gshare"))
		})

		It("should reject unknown names", func() {
			_, err := predictor.ParseVariant("tage")
			Expect(err).To(MatchError(predictor.ErrUnknownVariant))
			Expect(err.Error()).NotTo(ContainSubstring("did you mean"))

			_, err = predictor.ParseVariant("")
			Expect(err).To(MatchError(predictor.ErrUnknownVariant))
		})
	})

	Describe("FromParams", func() {
		It("should map parameters in command-line order", func() {
			c, err := predictor.FromParams(predictor.Hybrid, []uint{8, 14, 10, 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal(predictor.HybridConfig(8, 14, 10, 5)))
			Expect(c.Params()).To(Equal([]uint{8, 14, 10, 5}))

			c, err = predictor.FromParams(predictor.Gshare, []uint{9, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.M1).To(Equal(uint(9)))
			Expect(c.N).To(Equal(uint(3)))
		})

		It("should reject a wrong parameter count", func() {
			_, err := predictor.FromParams(predictor.Bimodal, []uint{6, 2})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("bimodal takes 1 parameters, got 2"))

			_, err = predictor.FromParams(predictor.Hybrid, []uint{6, 2})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		It("should accept the default config", func() {
			Expect(predictor.DefaultConfig().Validate()).To(Succeed())
		})

		It("should allow N equal to M1", func() {
			Expect(predictor.GshareConfig(6, 6).Validate()).To(Succeed())
		})

		It("should ignore widths the variant does not use", func() {
			c := predictor.BimodalConfig(4)
			c.N = 12
			Expect(c.Validate()).To(Succeed())
		})

		It("should bound every table width", func() {
			Expect(predictor.HybridConfig(33, 4, 2, 4).Validate()).
				To(MatchError(predictor.ErrIndexTooWide))
			Expect(predictor.GshareConfig(33, 2).Validate()).
				To(MatchError(predictor.ErrIndexTooWide))
		})
	})

	Describe("LoadConfig / SaveConfig", func() {
		It("should round-trip through a JSON file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "predictor.json")
			want := predictor.HybridConfig(4, 10, 6, 9)

			Expect(want.SaveConfig(path)).To(Succeed())
			got, err := predictor.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})

		It("should parse predictor names", func() {
			path := filepath.Join(GinkgoT().TempDir(), "gshare.json")
			Expect(os.WriteFile(path, []byte(`{"predictor": "gshare", "m1": 12, "n": 4}`), 0644)).To(Succeed())

			got, err := predictor.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(predictor.GshareConfig(12, 4)))
		})

		It("should fail on a bad predictor name", func() {
			path := filepath.Join(GinkgoT().TempDir(), "bad.json")
			Expect(os.WriteFile(path, []byte(`{"predictor": "perceptron"}`), 0644)).To(Succeed())

			_, err := predictor.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})

		It("should fail on a missing file", func() {
			_, err := predictor.LoadConfig(filepath.Join(GinkgoT().TempDir(), "missing.json"))
			Expect(err).To(HaveOccurred())
		})
	})
})
