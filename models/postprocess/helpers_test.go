package postprocess

// slot describes the raw values of one (row, col, anchor) triple.
type slot struct {
	row, col, anchor   int
	tx, ty, tw, th, to float32
	classes            []float32
}

// gridIndex is the flat offset of (row, col, anchor, channel) in grid-major order.
func gridIndex(s GridShape, row, col, anchor, channel int) int {
	return ((row*s.Width+col)*s.Anchors+anchor)*s.Channels() + channel
}

// channelIndex is the flat offset of (row, col, anchor, channel) in channel-major order.
func channelIndex(s GridShape, row, col, anchor, channel int) int {
	return ((anchor*s.Channels()+channel)*s.Height+row)*s.Width + col
}

// buildTensor returns a tensor where every slot has objectness logit -30
// (confidence ~0) except the given slots.
func buildTensor(shape GridShape, layout Layout, slots ...slot) []float32 {
	index := gridIndex
	if layout == LayoutChannelMajor {
		index = channelIndex
	}

	data := make([]float32, shape.Len())
	for r := 0; r < shape.Height; r++ {
		for c := 0; c < shape.Width; c++ {
			for a := 0; a < shape.Anchors; a++ {
				data[index(shape, r, c, a, 4)] = -30
			}
		}
	}

	for _, s := range slots {
		data[index(shape, s.row, s.col, s.anchor, 0)] = s.tx
		data[index(shape, s.row, s.col, s.anchor, 1)] = s.ty
		data[index(shape, s.row, s.col, s.anchor, 2)] = s.tw
		data[index(shape, s.row, s.col, s.anchor, 3)] = s.th
		data[index(shape, s.row, s.col, s.anchor, 4)] = s.to
		for i, v := range s.classes {
			data[index(shape, s.row, s.col, s.anchor, boxChannels+i)] = v
		}
	}

	return data
}

// testAnchors returns n unit anchors.
func testAnchors(n int) Anchors {
	anchors := make(Anchors, n)
	for i := range anchors {
		anchors[i] = Anchor{Width: 1, Height: 1}
	}
	return anchors
}
