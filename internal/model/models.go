package model

import (
	"fmt"
	"math/bits"
)

type Protocol string // "tcp", "udp"

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

// Block is an IPv4 CIDR block. Base must be aligned to Size().
type Block struct {
	Base   uint32
	Prefix int
}

// Size returns the number of addresses covered by the block.
func (b Block) Size() uint64 {
	return 1 << (32 - b.Prefix)
}

// Last returns the highest address in the block.
func (b Block) Last() uint32 {
	return uint32(uint64(b.Base) + b.Size() - 1)
}

// Aligned reports whether Base is a multiple of the block size.
func (b Block) Aligned() bool {
	return uint64(b.Base)%b.Size() == 0
}

func (b Block) Contains(addr uint32) bool {
	return addr >= b.Base && addr <= b.Last()
}

func (b Block) String() string {
	return fmt.Sprintf("%d.%d.%d.%d/%d", byte(b.Base>>24), byte(b.Base>>16), byte(b.Base>>8), byte(b.Base), b.Prefix)
}

// BlockFor builds the block of the given power-of-two size starting at base.
func BlockFor(base uint32, size uint64) Block {
	return Block{Base: base, Prefix: 32 - (bits.Len64(size) - 1)}
}

type EntryKind int

const (
	EntrySkip EntryKind = iota
	EntryCIDR
	EntryRange
)

// Entry is one classified input line.
type Entry struct {
	Kind  EntryKind
	CIDR  string // EntryCIDR
	Start string // EntryRange
	End   string // EntryRange
}

// Service scopes a deny rule to one destination port. Zero value means any.
type Service struct {
	Name     string
	Port     int
	Protocol Protocol
}

func (s Service) Any() bool {
	return s.Port == 0
}

// AddressObject is a named address from a firewall configuration source.
type AddressObject struct {
	Name    string
	Type    string // "ipmask", "iprange", "fqdn"
	Subnet  string
	StartIP string
	EndIP   string
	FQDN    string
}

type ApplyResult struct {
	CIDR    string
	Applied bool
	Err     error
}

type ApplySummary struct {
	Total   int
	Applied int
	Failed  []ApplyResult
}
