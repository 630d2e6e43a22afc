package types

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/vmihailenco/msgpack/v5"
	"net"
	"strconv"
)

// --------------------------------------------------------------------------
// Node Configuration
// --------------------------------------------------------------------------

// NodeConfiguration describes how a cluster node can be reached.
// Wire layout: [name, bind host, node port, publish hosts, http host, http port]
type NodeConfiguration struct {
	Name         string
	BindHost     string
	NodePort     int
	PublishHosts []string // in preference order
	HTTPHost     string
	HTTPPort     int
}

// NodeAddress returns host:port of the node endpoint
func (c NodeConfiguration) NodeAddress() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(c.NodePort))
}

// HTTPAddress returns host:port of the http endpoint
func (c NodeConfiguration) HTTPAddress() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

func (c NodeConfiguration) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(6); err != nil {
		return err
	}
	if err := enc.EncodeString(c.Name); err != nil {
		return err
	}
	if err := enc.EncodeString(c.BindHost); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(c.NodePort)); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(c.PublishHosts)); err != nil {
		return err
	}
	for _, host := range c.PublishHosts {
		if err := enc.EncodeString(host); err != nil {
			return err
		}
	}
	if err := enc.EncodeString(c.HTTPHost); err != nil {
		return err
	}
	return enc.EncodeInt(int64(c.HTTPPort))
}

func (c *NodeConfiguration) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "NodeConfiguration", 6); err != nil {
		return err
	}
	if c.Name, err = dec.DecodeString(); err != nil {
		return err
	}
	if c.BindHost, err = dec.DecodeString(); err != nil {
		return err
	}
	if c.NodePort, err = dec.DecodeInt(); err != nil {
		return err
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	c.PublishHosts = nil
	for i := 0; i < n; i++ {
		host, err := dec.DecodeString()
		if err != nil {
			return err
		}
		c.PublishHosts = append(c.PublishHosts, host)
	}
	if c.HTTPHost, err = dec.DecodeString(); err != nil {
		return err
	}
	c.HTTPPort, err = dec.DecodeInt()
	return err
}

// --------------------------------------------------------------------------
// Member
// --------------------------------------------------------------------------

// Member is a node taking part in a cluster view.
// Wire layout: [configuration or nil]
type Member struct {
	Configuration *NodeConfiguration
}

func (m Member) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(1); err != nil {
		return err
	}
	if m.Configuration == nil {
		return enc.EncodeNil()
	}
	return m.Configuration.EncodeMsgpack(enc)
}

func (m *Member) DecodeMsgpack(dec *msgpack.Decoder) error {
	if err := decodeHeader(dec, "Member", 1); err != nil {
		return err
	}
	m.Configuration = nil
	absent, err := serializer.TrySkipNil(dec)
	if err != nil || absent {
		return err
	}
	m.Configuration = &NodeConfiguration{}
	return m.Configuration.DecodeMsgpack(dec)
}

// --------------------------------------------------------------------------
// View
// --------------------------------------------------------------------------

// View is the membership of a cluster as seen by one node. Members keep their order.
// Wire layout: [cluster name, [member...]]
type View struct {
	ClusterName string
	Members     []Member
}

// Member returns the member with the given node name
func (v View) Member(name string) (Member, bool) {
	for _, m := range v.Members {
		if m.Configuration != nil && m.Configuration.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// String returns a short description of the view
func (v View) String() string {
	return fmt.Sprintf("%s (%d members)", v.ClusterName, len(v.Members))
}

func (v View) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(v.ClusterName); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(v.Members)); err != nil {
		return err
	}
	for _, m := range v.Members {
		if err := m.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "View", 2); err != nil {
		return err
	}
	if v.ClusterName, err = dec.DecodeString(); err != nil {
		return err
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	v.Members = nil
	for i := 0; i < n; i++ {
		var m Member
		if err := m.DecodeMsgpack(dec); err != nil {
			return err
		}
		v.Members = append(v.Members, m)
	}
	return nil
}
