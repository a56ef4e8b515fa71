package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. Written by hand rather than
// generated: the optional Metadata/OCR pointers and the packed color slice
// have a more compact layout than the generic struct encoding.
//
// Timestamps are encoded as Unix microseconds.

var (
	IDMUS             = idSer{}
	ColorMUS          = colorSer{}
	VisualMetadataMUS = visualMetadataSer{}
	OCRWordMUS        = ocrWordSer{}
	OCRResultMUS      = ocrResultSer{}
	ImageRecordMUS    = imageRecordSer{}
)

var (
	_ mus.Serializer[ID]             = IDMUS
	_ mus.Serializer[Color]          = ColorMUS
	_ mus.Serializer[VisualMetadata] = VisualMetadataMUS
	_ mus.Serializer[OCRWord]        = OCRWordMUS
	_ mus.Serializer[OCRResult]      = OCRResultMUS
	_ mus.Serializer[ImageRecord]    = ImageRecordMUS
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type colorSer struct{}

func (colorSer) Marshal(c Color, bs []byte) (n int) {
	bs[0] = c.R
	bs[1] = c.G
	bs[2] = c.B
	return 3
}

func (colorSer) Unmarshal(bs []byte) (c Color, n int, err error) {
	if len(bs) < 3 {
		return c, 0, mus.ErrTooSmallByteSlice
	}
	return Color{R: bs[0], G: bs[1], B: bs[2]}, 3, nil
}

func (colorSer) Size(Color) (size int) {
	return 3
}

func (colorSer) Skip(bs []byte) (n int, err error) {
	if len(bs) < 3 {
		return 0, mus.ErrTooSmallByteSlice
	}
	return 3, nil
}

type visualMetadataSer struct{}

func (visualMetadataSer) Marshal(m VisualMetadata, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(m.DominantColors), bs)
	for _, c := range m.DominantColors {
		n += ColorMUS.Marshal(c, bs[n:])
	}
	n += raw.Float64.Marshal(m.Brightness, bs[n:])
	n += raw.Float64.Marshal(m.Contrast, bs[n:])
	n += raw.Float64.Marshal(m.ColorEntropy, bs[n:])
	n += raw.Float64.Marshal(m.EdgeDensity, bs[n:])
	return n
}

func (visualMetadataSer) Unmarshal(bs []byte) (m VisualMetadata, n int, err error) {
	count, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return m, n, err
	}
	if count > 0 {
		m.DominantColors = make([]Color, count)
		for i := 0; i < count; i++ {
			var n1 int
			m.DominantColors[i], n1, err = ColorMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return m, n, err
			}
		}
	}
	var n1 int
	if m.Brightness, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Contrast, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ColorEntropy, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.EdgeDensity, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	return m, n, nil
}

func (visualMetadataSer) Size(m VisualMetadata) (size int) {
	size = varint.PositiveInt.Size(len(m.DominantColors))
	size += 3 * len(m.DominantColors)
	size += 4 * raw.Float64.Size(0)
	return size
}

func (s visualMetadataSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type ocrWordSer struct{}

func (ocrWordSer) Marshal(w OCRWord, bs []byte) (n int) {
	n = ord.String.Marshal(w.Text, bs)
	n += raw.Float64.Marshal(w.Confidence, bs[n:])
	return n
}

func (ocrWordSer) Unmarshal(bs []byte) (w OCRWord, n int, err error) {
	w.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return w, n, err
	}
	var n1 int
	w.Confidence, n1, err = raw.Float64.Unmarshal(bs[n:])
	return w, n + n1, err
}

func (ocrWordSer) Size(w OCRWord) (size int) {
	return ord.String.Size(w.Text) + raw.Float64.Size(w.Confidence)
}

func (s ocrWordSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type ocrResultSer struct{}

func (ocrResultSer) Marshal(o OCRResult, bs []byte) (n int) {
	n = ord.String.Marshal(o.Text, bs)
	n += raw.Float64.Marshal(o.Confidence, bs[n:])
	n += varint.PositiveInt.Marshal(len(o.Words), bs[n:])
	for _, w := range o.Words {
		n += OCRWordMUS.Marshal(w, bs[n:])
	}
	return n
}

func (ocrResultSer) Unmarshal(bs []byte) (o OCRResult, n int, err error) {
	o.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return o, n, err
	}
	var n1 int
	if o.Confidence, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	count, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return o, n, err
	}
	if count > 0 {
		o.Words = make([]OCRWord, count)
		for i := 0; i < count; i++ {
			o.Words[i], n1, err = OCRWordMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return o, n, err
			}
		}
	}
	return o, n, nil
}

func (ocrResultSer) Size(o OCRResult) (size int) {
	size = ord.String.Size(o.Text) + raw.Float64.Size(o.Confidence)
	size += varint.PositiveInt.Size(len(o.Words))
	for _, w := range o.Words {
		size += OCRWordMUS.Size(w)
	}
	return size
}

func (s ocrResultSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type imageRecordSer struct{}

func (imageRecordSer) Marshal(r ImageRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += varint.PositiveInt.Marshal(len(r.Vector), bs[n:])
	for _, v := range r.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	n += varint.Int64.Marshal(r.Timestamp.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(r.InsertedAt.UnixMicro(), bs[n:])
	n += ord.String.Marshal(r.Source, bs[n:])
	n += ord.Bool.Marshal(r.Metadata != nil, bs[n:])
	if r.Metadata != nil {
		n += VisualMetadataMUS.Marshal(*r.Metadata, bs[n:])
	}
	n += ord.Bool.Marshal(r.OCR != nil, bs[n:])
	if r.OCR != nil {
		n += OCRResultMUS.Marshal(*r.OCR, bs[n:])
	}
	return n
}

func (imageRecordSer) Unmarshal(bs []byte) (r ImageRecord, n int, err error) {
	r.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	dim, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	if dim > 0 {
		r.Vector = make([]float32, dim)
		for i := 0; i < dim; i++ {
			r.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return r, n, err
			}
		}
	}
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	r.Timestamp = time.UnixMicro(micros).UTC()
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	r.InsertedAt = time.UnixMicro(micros).UTC()
	if r.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	hasMeta, n1, err := ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	if hasMeta {
		meta, n1, err := VisualMetadataMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return r, n, err
		}
		r.Metadata = &meta
	}
	hasOCR, n1, err := ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	if hasOCR {
		ocr, n1, err := OCRResultMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return r, n, err
		}
		r.OCR = &ocr
	}
	return r, n, nil
}

func (imageRecordSer) Size(r ImageRecord) (size int) {
	size = IDMUS.Size(r.Id)
	size += varint.PositiveInt.Size(len(r.Vector))
	size += raw.Float32.Size(0) * len(r.Vector)
	size += varint.Int64.Size(r.Timestamp.UnixMicro())
	size += varint.Int64.Size(r.InsertedAt.UnixMicro())
	size += ord.String.Size(r.Source)
	size += ord.Bool.Size(r.Metadata != nil)
	if r.Metadata != nil {
		size += VisualMetadataMUS.Size(*r.Metadata)
	}
	size += ord.Bool.Size(r.OCR != nil)
	if r.OCR != nil {
		size += OCRResultMUS.Size(*r.OCR)
	}
	return size
}

func (s imageRecordSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
