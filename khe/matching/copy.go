package matching

// CopyMap maps the chunks and nodes of a matching to their counterparts in a
// copy of it.
type CopyMap struct {
	to           *Matching
	mapListener  func(Listener) Listener
	demandChunks map[*DemandChunk]*DemandChunk
	demandNodes  map[*DemandNode]*DemandNode
}

// SupplyNode returns the copy of sn.
func (cm *CopyMap) SupplyNode(sn *SupplyNode) *SupplyNode {
	if sn == nil {
		return nil
	}
	return cm.to.supplyNodes[sn.index]
}

// SupplyChunk returns the copy of sc.
func (cm *CopyMap) SupplyChunk(sc *SupplyChunk) *SupplyChunk {
	if sc == nil {
		return nil
	}
	return cm.to.supplyChunks[sc.index]
}

// DemandChunk returns the copy of dc.
func (cm *CopyMap) DemandChunk(dc *DemandChunk) *DemandChunk {
	if dc == nil {
		return nil
	}
	return cm.demandChunks[dc]
}

// DemandNode returns the copy of dn. Demand nodes that were not added to the
// original matching are copied on first request.
func (cm *CopyMap) DemandNode(dn *DemandNode) *DemandNode {
	if dn == nil {
		return nil
	}
	if c, ok := cm.demandNodes[dn]; ok {
		return c
	}
	c := &DemandNode{
		chunk:        cm.demandChunks[dn.chunk],
		domain:       dn.domain,
		asstIndex:    dn.asstIndex,
		unmatchedPos: dn.unmatchedPos,
		listener:     cm.listener(dn.listener),
		reported:     dn.reported,
		added:        dn.added,
	}
	cm.demandNodes[dn] = c
	return c
}

func (cm *CopyMap) listener(l Listener) Listener {
	if cm.mapListener == nil || l == nil {
		return l
	}
	return cm.mapListener(l)
}

// Copy returns a deep copy of m and the map from m's elements to the copy's.
// The listener of each copied demand node is mapListener applied to the
// original listener; a nil mapListener keeps listeners unchanged. Hall sets
// and competitors are not copied. Copy panics if m has an open mark.
func (m *Matching) Copy(mapListener func(Listener) Listener) (*Matching, *CopyMap) {
	if len(m.marks) > 0 {
		panic("matching.Copy: matching has an open mark")
	}
	c := &Matching{
		demandNodeCount:     m.demandNodeCount,
		visitNum:            1,
		unmatchedLowerBound: m.unmatchedLowerBound,
	}
	cm := &CopyMap{
		to:           c,
		mapListener:  mapListener,
		demandChunks: make(map[*DemandChunk]*DemandChunk, len(m.demandChunks)),
		demandNodes:  map[*DemandNode]*DemandNode{},
	}

	// First pass: create the copies.
	for _, sc := range m.supplyChunks {
		csc := &SupplyChunk{matching: c, index: sc.index, base: sc.base}
		for _, sn := range sc.nodes {
			csn := &SupplyNode{chunk: csc, index: sn.index}
			csc.nodes = append(csc.nodes, csn)
			c.supplyNodes = append(c.supplyNodes, csn)
		}
		c.supplyChunks = append(c.supplyChunks, csc)
	}
	for _, dc := range m.demandChunks {
		cdc := &DemandChunk{
			matching:  c,
			index:     dc.index,
			base:      dc.base,
			increment: dc.increment,
			domain:    dc.domain,
		}
		cm.demandChunks[dc] = cdc
		c.demandChunks = append(c.demandChunks, cdc)
	}

	// Second pass: link them.
	for _, dc := range m.demandChunks {
		cdc := cm.demandChunks[dc]
		for _, dn := range dc.nodes {
			cdn := cm.DemandNode(dn)
			if dn.asst != nil {
				csn := c.supplyNodes[dn.asst.index]
				cdn.asst = csn
				csn.asst = cdn
			}
			cdc.nodes = append(cdc.nodes, cdn)
		}
	}
	for _, dn := range m.unmatched {
		c.unmatched = append(c.unmatched, cm.DemandNode(dn))
	}
	return c, cm
}
