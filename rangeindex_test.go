package colblock_test

import (
	"github.com/bsm/colblock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("IndexTree", func() {
	var subject *colblock.IndexTree

	BeforeEach(func() {
		subject = colblock.NewIndexTree()
	})

	It("should merge ranges", func() {
		node := subject.Node("temp")
		node.Merge(colblock.NewRange(1.0, 5.0))
		node.Merge(colblock.NewRange(3.0, 10.0))
		Expect(node.Poisoned()).To(BeFalse())
		Expect(node.Index()).To(Equal(colblock.NewRange(1.0, 10.0)))

		Expect(subject.CanSkip("temp", colblock.NewRangeFilter(20.0, 30.0))).To(BeTrue())
		Expect(subject.CanSkip("temp", colblock.NewRangeFilter(4.0, 6.0))).To(BeFalse())
		Expect(subject.CanSkip("temp", colblock.NewRangeFilter(-5.0, 0.9))).To(BeTrue())
		Expect(subject.CanSkip("temp", colblock.NewRangeFilter(-5.0, 1.0))).To(BeFalse())
		Expect(subject.CanSkip("temp", colblock.NewRangeFilter(10.0, 11.0))).To(BeFalse())
	})

	It("should not alias merged indexes", func() {
		r := colblock.NewRange[int32](1, 5)
		subject.Node("x").Merge(r)
		subject.Node("x").Merge(colblock.NewRange[int32](0, 9))
		Expect(r).To(Equal(colblock.NewRange[int32](1, 5)))
	})

	It("should not skip unknown columns or mismatching filters", func() {
		subject.Node("n").Merge(colblock.NewRange[int64](1, 5))
		Expect(subject.CanSkip("n", colblock.NewRangeFilter[int64](6, 9))).To(BeTrue())
		Expect(subject.CanSkip("n", colblock.NewRangeFilter[int32](6, 9))).To(BeFalse())
		Expect(subject.CanSkip("m", colblock.NewRangeFilter[int64](6, 9))).To(BeFalse())
		Expect(subject.CanSkip("n", colblock.Filter{})).To(BeFalse())
	})

	It("should poison permanently", func() {
		node := subject.Node("n")
		node.Merge(colblock.NewRange[int16](1, 5))
		node.Merge(colblock.Unsupported)
		Expect(node.Poisoned()).To(BeTrue())
		Expect(node.Index()).To(Equal(colblock.Unsupported))

		node.Merge(colblock.NewRange[int16](1, 5))
		Expect(node.Poisoned()).To(BeTrue())
		Expect(node.CanSkip(colblock.NewRangeFilter[int16](7, 9))).To(BeFalse())
	})

	It("should poison on type mismatch", func() {
		node := subject.Node("n")
		node.Merge(colblock.NewRange[int16](1, 5))
		node.Merge(colblock.NewRange[int32](1, 5))
		Expect(node.Poisoned()).To(BeTrue())
	})

	It("should reject foreign merges", func() {
		Expect(colblock.Unsupported.Merge(colblock.NewRange[int8](1, 2))).To(BeFalse())
		Expect(colblock.NewRange[int8](1, 2).Merge(colblock.Unsupported)).To(BeFalse())
		Expect(colblock.NewRange[int8](1, 2).Merge(colblock.NewRange[int8](0, 1))).To(BeTrue())
	})

	It("should serialize", func() {
		subject.Node("f64").Merge(colblock.NewRange(-1.5, 2.5))
		subject.Node("i8").Merge(colblock.NewRange[int8](-128, 127))
		subject.Node("bad").Merge(colblock.Unsupported)
		subject.Node("empty")

		data, err := subject.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(HaveLen(subject.BinarySize()))
		Expect(data).To(Equal([]byte{
			4,
			3, 'b', 'a', 'd', 0,
			5, 'e', 'm', 'p', 't', 'y', 0,
			3, 'f', '6', '4', 1, 6, 0xbf, 0xf8, 0, 0, 0, 0, 0, 0, 0x40, 0x04, 0, 0, 0, 0, 0, 0,
			2, 'i', '8', 1, 1, 0x80, 0x7f,
		}))

		tree, err := colblock.UnmarshalIndexTree(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(tree.Names()).To(Equal([]string{"bad", "empty", "f64", "i8"}))

		f64, ok := tree.Lookup("f64")
		Expect(ok).To(BeTrue())
		Expect(f64.Index()).To(Equal(colblock.NewRange(-1.5, 2.5)))

		bad, ok := tree.Lookup("bad")
		Expect(ok).To(BeTrue())
		Expect(bad.Poisoned()).To(BeTrue())

		// poisoning survives further merges
		bad.Merge(colblock.NewRange(1.0, 2.0))
		Expect(bad.Poisoned()).To(BeTrue())

		Expect(tree.CanSkip("i8", colblock.NewRangeFilter[int8](0, 1))).To(BeFalse())
		Expect(tree.CanSkip("f64", colblock.NewRangeFilter(3.0, 4.0))).To(BeTrue())
	})

	It("should reject corrupt data", func() {
		subject.Node("x").Merge(colblock.NewRange[int32](1, 5))
		data, err := subject.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < len(data); i++ {
			_, err := colblock.UnmarshalIndexTree(data[:i])
			Expect(err).To(MatchError(colblock.ErrCorrupt), "for %d bytes", i)
		}

		_, err = colblock.UnmarshalIndexTree(append(data, 0))
		Expect(err).To(MatchError(colblock.ErrCorrupt))

		data[3] = 9 // tag
		_, err = colblock.UnmarshalIndexTree(data)
		Expect(err).To(MatchError(colblock.ErrCorrupt))

		// name length of MaxUint64
		_, err = colblock.UnmarshalIndexTree([]byte{1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0})
		Expect(err).To(MatchError(colblock.ErrCorrupt))
	})

	It("should reset", func() {
		subject.Node("a").Merge(colblock.NewRange[int8](1, 2))
		subject.Node("b").Merge(colblock.NewRange[int8](1, 2))
		Expect(subject.Len()).To(Equal(2))

		subject.Reset()
		Expect(subject.Len()).To(Equal(0))
		Expect(subject.BinarySize()).To(Equal(1))
	})

	Describe("codec ranges", func() {
		It("should index dictionary columns", func() {
			a := encode(seedCells[int32]("n", 100, 10, 0), "snappy") // -5..4
			b := encode(seedCells[int32]("n", 100, 40, 3), "snappy") // -20..19
			dict, err := colblock.LookupCodec(a.Codec)
			Expect(err).NotTo(HaveOccurred())

			Expect(dict.SetRangeIndex(subject, a)).To(Succeed())
			Expect(dict.SetRangeIndex(subject, b)).To(Succeed())

			node, _ := subject.Lookup("n")
			Expect(node.Index()).To(Equal(colblock.NewRange[int32](-20, 19)))
		})

		It("should index constants", func() {
			cb := encode(seedCells[float32]("c", 10, 1, 0), "snappy")
			Expect(cb.Codec).To(Equal("const"))

			codec, err := colblock.LookupCodec(cb.Codec)
			Expect(err).NotTo(HaveOccurred())
			Expect(codec.SetRangeIndex(subject, cb)).To(Succeed())

			node, _ := subject.Lookup("c")
			Expect(node.Index()).To(Equal(colblock.NewRange[float32](0, 0)))
		})

		It("should not index all-null columns", func() {
			cells := colblock.NewCells[int8]("n")
			cells.AppendNull()
			cb := encode(cells, "snappy")

			dict, _ := colblock.LookupCodec(cb.Codec)
			Expect(dict.SetRangeIndex(subject, cb)).To(Succeed())

			node, _ := subject.Lookup("n")
			Expect(node.Poisoned()).To(BeTrue())
		})
	})
})
