package model

// op identifies the kind of a graph node.
type op int

const (
	opConv op = iota
	opC2f
	opSPPF
	opUpsample
	opConcat
	opHead
)

func (o op) String() string {
	switch o {
	case opConv:
		return "ConvModule"
	case opC2f:
		return "C2f"
	case opSPPF:
		return "SPPF"
	case opUpsample:
		return "Upsample"
	case opConcat:
		return "Concat"
	case opHead:
		return "DetectionHead"
	default:
		return "Unknown"
	}
}

// inputNode names the network input in node input lists.
const inputNode = "input"

// node is one step of the detector graph. Nodes are listed in execution
// order; every input refers to inputNode or an earlier node.
type node struct {
	name   string
	op     op
	inputs []string

	cin, cout int // channels (ConvModule, C2f, SPPF, DetectionHead input)
	stride    int // ConvModule stride or head stride
	depth     int // C2f bottleneck count
}

// Backbone convolutions are all 3x3 with padding 1.
const (
	convKernel  = 3
	convPadding = 1
	upScale     = 2
)

func conv(name, from string, cin, cout int) node {
	return node{name: name, op: opConv, inputs: []string{from}, cin: cin, cout: cout, stride: 2}
}

func c2f(name, from string, cin, cout, depth int) node {
	return node{name: name, op: opC2f, inputs: []string{from}, cin: cin, cout: cout, depth: depth}
}

func sppf(name, from string, c int) node {
	return node{name: name, op: opSPPF, inputs: []string{from}, cin: c, cout: c}
}

func upsample(name, from string) node {
	return node{name: name, op: opUpsample, inputs: []string{from}}
}

func concat(name string, from ...string) node {
	return node{name: name, op: opConcat, inputs: from}
}

func head(name, from string, c, stride int) node {
	return node{name: name, op: opHead, inputs: []string{from}, cin: c, stride: stride}
}

var fullTopology = []node{
	// Backbone.
	conv("conv1", inputNode, InputChannels, 16),
	conv("conv2", "conv1", 16, 32),
	c2f("c2f_1", "conv2", 32, 32, 1),
	conv("conv3", "c2f_1", 32, 64),
	c2f("c2f_2", "conv3", 64, 64, 2),
	conv("conv4", "c2f_2", 64, 64),
	c2f("c2f_3", "conv4", 64, 64, 2),
	conv("conv5", "c2f_3", 64, 64),
	c2f("c2f_4", "conv5", 64, 64, 1),
	sppf("sppf", "c2f_4", 64),

	// Neck, top-down.
	upsample("up_1", "sppf"),
	concat("cat_1", "up_1", "c2f_3"),
	c2f("c2f_5", "cat_1", 128, 64, 1),
	upsample("up_2", "c2f_5"),
	concat("cat_2", "up_2", "c2f_2"),
	c2f("c2f_6", "cat_2", 128, 64, 1),

	// Neck, bottom-up.
	conv("conv6", "c2f_6", 64, 64),
	concat("cat_3", "conv6", "c2f_5"),
	c2f("c2f_7", "cat_3", 128, 64, 1),
	conv("conv7", "c2f_7", 64, 64),
	concat("cat_4", "conv7", "sppf"),
	c2f("c2f_8", "cat_4", 128, 64, 1),

	head("head1", "c2f_6", 64, 8),
	head("head2", "c2f_7", 64, 16),
	head("head3", "c2f_8", 64, 32),
}

var liteTopology = []node{
	conv("conv1", inputNode, InputChannels, 16),
	conv("conv2", "conv1", 16, 32),
	c2f("c2f_1", "conv2", 32, 32, 1),
	conv("conv3", "c2f_1", 32, 64),
	c2f("c2f_2", "conv3", 64, 64, 2),
	conv("conv4", "c2f_2", 64, 64),
	sppf("sppf", "conv4", 64),

	c2f("c2f_5", "sppf", 64, 64, 1),
	upsample("up_2", "c2f_5"),
	concat("cat_2", "up_2", "c2f_2"),
	c2f("c2f_6", "cat_2", 128, 64, 1),

	head("head1", "c2f_6", 64, 8),
}

// topology returns the graph of a variant. Unknown variants get the full
// graph; Config.Validate rejects them before a detector is built.
func topology(v Variant) []node {
	if v == VariantLite {
		return liteTopology
	}
	return fullTopology
}

// lastUses maps every node name to the index of the last node that reads
// it, so intermediate maps can be released as soon as possible.
func lastUses(nodes []node) map[string]int {
	last := make(map[string]int, len(nodes))
	for i, n := range nodes {
		for _, in := range n.inputs {
			last[in] = i
		}
	}
	return last
}
