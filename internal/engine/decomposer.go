package engine

import (
	"errors"
	"fmt"

	"cidrblock/internal/model"
	"cidrblock/internal/utils"
)

// ErrInvalidRange is returned when a range starts after it ends.
var ErrInvalidRange = errors.New("invalid address range")

// RangeToBlocks returns the minimal list of aligned CIDR blocks that exactly
// covers the inclusive range [start, end], ordered by base address.
func RangeToBlocks(start, end uint32) ([]model.Block, error) {
	if start > end {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, utils.FormatIPv4(start), utils.FormatIPv4(end))
	}

	// uint64 so the cursor can step past 255.255.255.255 without wrapping.
	last := uint64(end)
	var blocks []model.Block
	for cur := uint64(start); cur <= last; {
		size := uint64(1)
		for cur&(size-1) == 0 && cur+size-1 <= last {
			size <<= 1
		}
		size >>= 1

		blocks = append(blocks, model.BlockFor(uint32(cur), size))
		cur += size
	}
	return blocks, nil
}

// RangeToCIDRs is RangeToBlocks for dotted-quad input and string output.
func RangeToCIDRs(start, end string) ([]string, error) {
	s, err := utils.ParseIPv4(start)
	if err != nil {
		return nil, err
	}
	e, err := utils.ParseIPv4(end)
	if err != nil {
		return nil, err
	}
	blocks, err := RangeToBlocks(s, e)
	if err != nil {
		return nil, err
	}
	cidrs := make([]string, len(blocks))
	for i, b := range blocks {
		cidrs[i] = b.String()
	}
	return cidrs, nil
}
