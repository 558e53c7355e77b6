package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wiring struct {
	name   string
	op     op
	inputs []string
}

func TestTopology_Wiring(t *testing.T) {
	tests := []struct {
		variant Variant
		want    []wiring
	}{
		{
			variant: VariantFull,
			want: []wiring{
				{"conv1", opConv, []string{inputNode}},
				{"conv2", opConv, []string{"conv1"}},
				{"c2f_1", opC2f, []string{"conv2"}},
				{"conv3", opConv, []string{"c2f_1"}},
				{"c2f_2", opC2f, []string{"conv3"}},
				{"conv4", opConv, []string{"c2f_2"}},
				{"c2f_3", opC2f, []string{"conv4"}},
				{"conv5", opConv, []string{"c2f_3"}},
				{"c2f_4", opC2f, []string{"conv5"}},
				{"sppf", opSPPF, []string{"c2f_4"}},
				{"up_1", opUpsample, []string{"sppf"}},
				{"cat_1", opConcat, []string{"up_1", "c2f_3"}},
				{"c2f_5", opC2f, []string{"cat_1"}},
				{"up_2", opUpsample, []string{"c2f_5"}},
				{"cat_2", opConcat, []string{"up_2", "c2f_2"}},
				{"c2f_6", opC2f, []string{"cat_2"}},
				{"conv6", opConv, []string{"c2f_6"}},
				{"cat_3", opConcat, []string{"conv6", "c2f_5"}},
				{"c2f_7", opC2f, []string{"cat_3"}},
				{"conv7", opConv, []string{"c2f_7"}},
				{"cat_4", opConcat, []string{"conv7", "sppf"}},
				{"c2f_8", opC2f, []string{"cat_4"}},
				{"head1", opHead, []string{"c2f_6"}},
				{"head2", opHead, []string{"c2f_7"}},
				{"head3", opHead, []string{"c2f_8"}},
			},
		},
		{
			variant: VariantLite,
			want: []wiring{
				{"conv1", opConv, []string{inputNode}},
				{"conv2", opConv, []string{"conv1"}},
				{"c2f_1", opC2f, []string{"conv2"}},
				{"conv3", opConv, []string{"c2f_1"}},
				{"c2f_2", opC2f, []string{"conv3"}},
				{"conv4", opConv, []string{"c2f_2"}},
				{"sppf", opSPPF, []string{"conv4"}},
				{"c2f_5", opC2f, []string{"sppf"}},
				{"up_2", opUpsample, []string{"c2f_5"}},
				{"cat_2", opConcat, []string{"up_2", "c2f_2"}},
				{"c2f_6", opC2f, []string{"cat_2"}},
				{"head1", opHead, []string{"c2f_6"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			nodes := topology(tt.variant)
			require.Len(t, nodes, len(tt.want))

			for i, w := range tt.want {
				n := nodes[i]
				assert.Equal(t, w.name, n.name, "node %d", i)
				assert.Equal(t, w.op, n.op, "%s op", w.name)
				assert.Equal(t, w.inputs, n.inputs, "%s inputs", w.name)
			}
		})
	}
}

// TestTopology_ConcatChannels checks that every C2f fed by a concat declares
// the summed channel count of the concat inputs.
func TestTopology_ConcatChannels(t *testing.T) {
	for _, v := range Variants {
		nodes := topology(v)
		out := map[string]int{inputNode: InputChannels}

		for _, n := range nodes {
			switch n.op {
			case opUpsample:
				out[n.name] = out[n.inputs[0]]
			case opConcat:
				sum := 0
				for _, in := range n.inputs {
					sum += out[in]
				}
				out[n.name] = sum
			case opHead:
				assert.Equal(t, out[n.inputs[0]], n.cin, "%s: %s input channels", v, n.name)
			default:
				assert.Equal(t, out[n.inputs[0]], n.cin, "%s: %s input channels", v, n.name)
				out[n.name] = n.cout
			}
		}
	}
}

func TestLastUses(t *testing.T) {
	last := lastUses(fullTopology)
	index := func(name string) int {
		for i, n := range fullTopology {
			if n.name == name {
				return i
			}
		}
		t.Fatalf("no node %s", name)
		return -1
	}

	// sppf feeds up_1 and, much later, cat_4.
	assert.Equal(t, index("cat_4"), last["sppf"])
	assert.Equal(t, index("head1"), last["c2f_6"])
	assert.Equal(t, index("cat_3"), last["c2f_5"])
	_, read := last["head3"]
	assert.False(t, read, "head outputs are never read by another node")
}
