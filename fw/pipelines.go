/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"
)

// The functions in this file run on the forwarder goroutine.

func isLocalhostName(name ndn.Name) bool {
	return len(name) > 0 && name[0].Typ == ndn.TypeGenericNameComponent && string(name[0].Val) == "localhost"
}

// canSendTo returns whether a packet with the name may leave through the face.
func canSendTo(f *Face, name ndn.Name) bool {
	return f != nil && f.running.Load() && (f.attrs.Local || !isLocalhostName(name))
}

func (fw *Forwarder) dispatch(f *Face, pkt *ndn.Packet) {
	switch l3 := pkt.L3.(type) {
	case *ndn.Interest:
		if pkt.Cancel {
			fw.cancelInterest(f, l3)
		} else {
			fw.processInterest(f, l3, pkt.Token)
		}
	case *ndn.Data:
		fw.processData(f, l3, pkt.Token)
	case *ndn.Nack:
		fw.processNack(f, l3)
	}
}

func (fw *Forwarder) processInterest(inFace *Face, interest *ndn.Interest, token []byte) {
	fw.counters.nInInterests.Add(1)
	core.LogTrace(fw, "OnIncomingInterest: ", interest, ", ", inFace)
	now := time.Now()

	if interest.HopLimit != nil {
		if *interest.HopLimit == 0 {
			core.LogDebug(fw, "Interest ", interest.Name, " has HopLimit=0 - DROP")
			return
		}
		interest = interest.Clone()
		*interest.HopLimit--
	}

	if !inFace.attrs.Local && isLocalhostName(interest.Name) {
		core.LogWarn(fw, "Interest ", interest.Name, " from non-local ", inFace, " violates /localhost scope - DROP")
		return
	}

	if fw.dnl.Find(interest.Name, interest.Nonce, now) {
		core.LogDebug(fw, "Interest ", interest, " matches Dead Nonce List - Nack")
		fw.sendNack(inFace, interest, ndn.NackReasonDuplicate, token)
		return
	}

	entry, isNew := fw.pit.Insert(interest)
	if !isNew {
		if entry.HasDuplicateNonce(inFace.id, interest.Nonce) {
			core.LogDebug(fw, "Interest ", interest, " is looping - Nack")
			fw.sendNack(inFace, interest, ndn.NackReasonDuplicate, token)
			return
		}
		record, _ := entry.InsertInRecord(interest, inFace.id, token, now)
		fw.pit.ExtendExpiration(entry, record.ExpirationTime)
		core.LogTrace(fw, "Interest ", interest.Name, " is already pending")
		return
	}

	record, _ := entry.InsertInRecord(interest, inFace.id, token, now)
	fw.pit.ExtendExpiration(entry, record.ExpirationTime)

	prefix, nexthops := fw.fib.LongestPrefixMatch(interest.Name)
	candidates := make([]uint64, 0, len(nexthops))
	for _, nexthop := range nexthops {
		if nexthop == inFace.id {
			continue
		}
		outFace := fw.faces.Get(nexthop)
		if !canSendTo(outFace, interest.Name) {
			continue
		}
		if interest.HopLimit != nil && *interest.HopLimit == 0 && !outFace.attrs.Local {
			continue
		}
		candidates = append(candidates, nexthop)
	}

	strategyName := fw.fib.FindStrategy(interest.Name)
	strategy, ok := fw.strategies[strategyName]
	if !ok {
		strategy = fw.strategies[fw.cfg.Fw.DefaultStrategy]
	}
	core.LogTrace(fw, "Using Strategy=", strategy, " for Interest=", interest.Name)
	chosen := strategy.AfterReceiveInterest(&StrategyContext{
		Interest:     interest,
		Prefix:       prefix,
		InFace:       inFace.id,
		Measurements: fw.measurements,
	}, candidates)

	if len(chosen) == 0 {
		core.LogDebug(fw, "No nexthop for Interest=", interest.Name, " - Nack")
		fw.sendNack(inFace, interest, ndn.NackReasonNoRoute, token)
		fw.pit.Remove(entry)
		return
	}

	for _, nexthop := range chosen {
		outFace := fw.faces.Get(nexthop)
		if outFace == nil {
			continue
		}
		core.LogTrace(fw, "OnOutgoingInterest: ", interest.Name, ", ", outFace)
		entry.InsertOutRecord(interest, nexthop, now)
		outFace.Send(ndn.MakeInterestPacket(interest, nil))
		fw.counters.nOutInterests.Add(1)
	}
}

func (fw *Forwarder) cancelInterest(inFace *Face, interest *ndn.Interest) {
	entry := fw.pit.FindExact(interest)
	if entry == nil {
		return
	}
	if entry.RemoveInRecord(inFace.id) {
		fw.counters.nCanceledInterests.Add(1)
		core.LogTrace(fw, "Canceled Interest ", interest.Name, " from ", inFace)
	}
}

func (fw *Forwarder) processData(inFace *Face, data *ndn.Data, token []byte) {
	fw.counters.nInData.Add(1)
	core.LogTrace(fw, "OnIncomingData: ", data, ", ", inFace)
	now := time.Now()

	if !inFace.attrs.Local && isLocalhostName(data.Name) {
		core.LogWarn(fw, "Data ", data.Name, " from non-local ", inFace, " violates /localhost scope - DROP")
		return
	}

	entries := fw.pit.FindByData(data)
	if len(entries) == 0 {
		fw.counters.nUnsolicitedData.Add(1)
		core.LogDebug(fw, "Unsolicited Data ", data.Name, " - DROP")
		return
	}

	for _, entry := range entries {
		if out, ok := entry.OutRecords[inFace.id]; ok {
			prefix, _ := fw.fib.LongestPrefixMatch(entry.Name)
			fw.measurements.AddRTTSample(prefix, inFace.id, now.Sub(out.LatestTimestamp))
		}

		// Data never goes back out the face it arrived on, even if that face also requested it.
		for faceID, in := range entry.InRecords {
			if faceID == inFace.id {
				continue
			}
			outFace := fw.faces.Get(faceID)
			if !canSendTo(outFace, data.Name) {
				continue
			}
			core.LogTrace(fw, "OnOutgoingData: ", data.Name, ", ", outFace)
			outFace.Send(ndn.MakeDataPacket(data, in.Token))
			fw.counters.nOutData.Add(1)
		}

		fw.counters.nSatisfiedInterests.Add(1)
		fw.pit.Remove(entry)
	}
}

func (fw *Forwarder) processNack(inFace *Face, nack *ndn.Nack) {
	fw.counters.nInNacks.Add(1)
	core.LogTrace(fw, "OnIncomingNack: ", nack, ", ", inFace)

	entry := fw.pit.FindExact(nack.Interest)
	if entry == nil {
		core.LogDebug(fw, "Nack ", nack, " has no PIT entry - DROP")
		return
	}
	out, ok := entry.OutRecords[inFace.id]
	if !ok || out.LatestNonce != nack.Interest.Nonce {
		core.LogDebug(fw, "Nack ", nack, " does not match an out-record - DROP")
		return
	}
	out.Nacked = true
	out.NackReason = nack.Reason

	allNacked, reason := entry.AllOutRecordsNacked()
	if !allNacked {
		return
	}
	for faceID, in := range entry.InRecords {
		interest := entry.Interest.Clone()
		interest.Nonce = in.LatestNonce
		fw.sendNack(fw.faces.Get(faceID), interest, reason, in.Token)
	}
	fw.pit.Remove(entry)
}

func (fw *Forwarder) sendNack(f *Face, interest *ndn.Interest, reason ndn.NackReason, token []byte) {
	if !canSendTo(f, interest.Name) {
		return
	}
	core.LogTrace(fw, "OnOutgoingNack: ", interest.Name, "~", reason, ", ", f)
	f.Send(ndn.MakeNackPacket(ndn.NewNack(interest, reason), token))
	fw.counters.nOutNacks.Add(1)
}

func (fw *Forwarder) onPitExpiration(entry *table.PitEntry) {
	now := time.Now()
	for _, out := range entry.OutRecords {
		fw.dnl.Insert(entry.Name, out.LatestNonce, now)
	}
	fw.counters.nUnsatisfiedInterests.Add(1)
	core.LogTrace(fw, "Expired PIT entry ", entry.Name)
}
