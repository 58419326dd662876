/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "time"

// MetaInfo carries the subset of Data metadata the forwarding core
// needs to reason about freshness.
type MetaInfo struct {
	FreshnessPeriod time.Duration
	FinalBlockID    *NameComponent
}

// Data represents an NDN Data packet.
type Data struct {
	name      Name
	metaInfo  MetaInfo
	content   []byte
	signature []byte

	tags map[string]any
}

// NewData creates a Data packet with the given name and content.
func NewData(name Name, content []byte) *Data {
	buf := make([]byte, len(content))
	copy(buf, content)
	return &Data{
		name:    name.DeepCopy(),
		content: buf,
		tags:    make(map[string]any),
	}
}

// Name returns the Data's name.
func (d *Data) Name() Name { return d.name }

// Content returns the Data's content.
func (d *Data) Content() []byte { return d.content }

// MetaInfo returns the Data's MetaInfo.
func (d *Data) MetaInfo() MetaInfo { return d.metaInfo }

// SetMetaInfo sets the Data's MetaInfo.
func (d *Data) SetMetaInfo(m MetaInfo) { d.metaInfo = m }

// Signature returns the opaque signature bytes.
func (d *Data) Signature() []byte { return d.signature }

// SetSignature sets the opaque signature bytes.
func (d *Data) SetSignature(sig []byte) { d.signature = sig }

// Tag returns the value stored under key in the Data's mutable tag map.
func (d *Data) Tag(key string) (any, bool) {
	v, ok := d.tags[key]
	return v, ok
}

// SetTag stores a value under key in the Data's mutable tag map.
func (d *Data) SetTag(key string, value any) {
	if d.tags == nil {
		d.tags = make(map[string]any)
	}
	d.tags[key] = value
}

// StaleTime returns the instant at which Data received at recvTime
// becomes stale, given its FreshnessPeriod. Data with no
// FreshnessPeriod (zero value) is stale immediately upon arrival;
// a FinalBlockID does not change that.
func (d *Data) StaleTime(recvTime time.Time) time.Time {
	if d.metaInfo.FreshnessPeriod <= 0 {
		return recvTime
	}
	return recvTime.Add(d.metaInfo.FreshnessPeriod)
}

func (d *Data) String() string {
	return "Data(" + d.name.String() + ")"
}
