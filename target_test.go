package colblock_test

import (
	"math"

	"github.com/bsm/colblock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Target", func() {
	var view colblock.ColumnView

	BeforeEach(func() {
		cells := colblock.NewCells[int64]("n")
		cells.Append(1)
		cells.AppendNull()
		cells.Append(300)
		cells.Append(-7)
		cells.AppendNull()

		var err error
		view, err = colblock.Decode(encode(cells, "snappy"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should load", func() {
		target := new(colblock.SliceTarget[int64])
		Expect(colblock.Load[int64](view, target)).To(Succeed())
		Expect(target.Values).To(Equal([]int64{1, 0, 300, -7, 0}))
		Expect(target.Valid).To(Equal([]bool{true, false, true, true, false}))
	})

	It("should load constants", func() {
		cells := colblock.NewCells[float32]("c")
		for i := 0; i < 3; i++ {
			cells.Append(2.5)
		}
		view, err := colblock.Decode(encode(cells, "snappy"))
		Expect(err).NotTo(HaveOccurred())

		target := new(colblock.SliceTarget[float32])
		Expect(colblock.Load[float32](view, target)).To(Succeed())
		Expect(target.Values).To(Equal([]float32{2.5, 2.5, 2.5}))
	})

	It("should reject mismatching types", func() {
		Expect(colblock.Load[int32](view, new(colblock.SliceTarget[int32]))).To(MatchError(colblock.ErrTypeMismatch))
	})

	It("should convert", func() {
		wide := new(colblock.SliceTarget[float64])
		Expect(colblock.Load[int64](view, colblock.Convert[int64, float64](wide))).To(Succeed())
		Expect(wide.Values).To(Equal([]float64{1, 0, 300, -7, 0}))

		narrow := new(colblock.SliceTarget[int8])
		err := colblock.Load[int64](view, colblock.Convert[int64, int8](narrow))
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		Expect(err).To(MatchError(`row 2: colblock: numeric narrowing out of range: 300 does not fit int8`))
	})

	It("should narrow", func() {
		Expect(colblock.Narrow[int8](int64(127))).To(Equal(int8(127)))
		Expect(colblock.Narrow[int8](int16(-128))).To(Equal(int8(-128)))
		Expect(colblock.Narrow[int16](float64(12))).To(Equal(int16(12)))
		Expect(colblock.Narrow[float32](float64(1.5))).To(Equal(float32(1.5)))
		Expect(colblock.Narrow[float32](int32(1 << 24))).To(Equal(float32(1 << 24)))
		Expect(colblock.Narrow[float64](int32(-9))).To(Equal(float64(-9)))

		var err error
		_, err = colblock.Narrow[int8](int64(128))
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		_, err = colblock.Narrow[int32](float64(1.5))
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		_, err = colblock.Narrow[int64](math.NaN())
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		_, err = colblock.Narrow[int32](float64(math.MaxInt64))
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		_, err = colblock.Narrow[float32](math.MaxFloat64)
		Expect(err).To(MatchError(colblock.ErrNarrowing))
		_, err = colblock.Narrow[float32](int32(1<<24 + 1))
		Expect(err).To(MatchError(colblock.ErrNarrowing))
	})

	It("should validate value counts", func() {
		target := new(colblock.SliceTarget[int16])
		Expect(target.Set(4, 1)).To(Succeed())
		Expect(target.SetValueCount(3)).To(HaveOccurred())
		Expect(target.SetValueCount(6)).To(Succeed())
		Expect(target.Valid).To(Equal([]bool{false, false, false, false, true, false}))
	})
})
