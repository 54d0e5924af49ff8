package colblock_test

import (
	"github.com/bsm/colblock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("WriterOptions", func() {
	It("should parse YAML", func() {
		o, err := colblock.ParseWriterOptions([]byte(`
block_size: 65536
compression: zstd
codec:
  compression: lz4
  byte_order: big
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(o.BlockSize).To(Equal(65536))
		Expect(o.Compression).To(Equal("zstd"))
		Expect(o.Codec).To(Equal(colblock.CodecOptions{
			Compression: "lz4",
			ByteOrder:   colblock.BigEndian,
		}))

		w, err := colblock.NewBlockWriter(o)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Append(10, []*colblock.ColumnBinary{
			encode(seedCells[int16]("x", 10, 10, 2), o.Codec.Compression),
		})).To(Succeed())
	})

	It("should parse empty documents", func() {
		o, err := colblock.ParseWriterOptions(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(o).To(Equal(&colblock.WriterOptions{}))
	})

	It("should reject bad input", func() {
		_, err := colblock.ParseWriterOptions([]byte(`block_sz: 100`))
		Expect(err).To(MatchError(ContainSubstring("field block_sz not found")))

		_, err = colblock.ParseWriterOptions([]byte(`codec: {byte_order: middle}`))
		Expect(err).To(MatchError(ContainSubstring(`invalid byte order "middle"`)))
	})

	It("should encode with custom byte order", func() {
		cells := seedCells[int32]("x", 50, 10, 4)
		little := encode(cells, "none")

		big, err := colblock.Encode(cells, &colblock.CodecOptions{Compression: "none", ByteOrder: colblock.BigEndian})
		Expect(err).NotTo(HaveOccurred())
		Expect(big.Data[8]).To(Equal(byte(0)))
		Expect(little.Data[8]).To(Equal(byte(1)))
		Expect(big.Data[:8]).To(Equal(little.Data[:8]))
		Expect(big.Data).NotTo(Equal(little.Data))
		expectRoundTrip(cells, &colblock.CodecOptions{ByteOrder: colblock.BigEndian})
	})

	It("should marshal byte orders", func() {
		Expect(colblock.BigEndian.MarshalText()).To(Equal([]byte("big")))
		Expect(colblock.DefaultOrder.String()).To(Equal("little"))
	})
})
