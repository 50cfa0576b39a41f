package parser

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"cidrblock/internal/engine"
	"cidrblock/internal/model"
)

// addressBook holds named address objects and groups loaded from a firewall
// configuration source.
type addressBook struct {
	AddressObjects map[string]*model.AddressObject
	AddrGrps       map[string][]string
}

func newAddressBook() addressBook {
	return addressBook{
		AddressObjects: make(map[string]*model.AddressObject),
		AddrGrps:       make(map[string][]string),
	}
}

// blocks returns the CIDR set for one group, or for every address object
// when group is empty.
func (b *addressBook) blocks(group string) (*engine.BlockSet, error) {
	var addrs []*model.AddressObject
	if group == "" {
		names := make([]string, 0, len(b.AddressObjects))
		for name := range b.AddressObjects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			addrs = append(addrs, b.AddressObjects[name])
		}
	} else {
		if _, ok := b.AddrGrps[group]; !ok {
			if _, ok := b.AddressObjects[group]; !ok {
				return nil, fmt.Errorf("address group '%s' not found", group)
			}
		}
		resolved, err := b.flattenAddrGroup(group, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		addrs = resolved
	}

	set := engine.NewBlockSet()
	for _, addr := range addrs {
		switch addr.Type {
		case "ipmask", "":
			if addr.Subnet == "" {
				continue
			}
			_, ipnet, err := net.ParseCIDR(addr.Subnet)
			if err != nil || ipnet.IP.To4() == nil {
				continue
			}
			set.Add(ipnet.String())
		case "iprange":
			if addr.StartIP == "" || addr.EndIP == "" {
				continue
			}
			if err := set.AddRange(addr.StartIP, addr.EndIP); err != nil {
				return nil, fmt.Errorf("address '%s': %w", addr.Name, err)
			}
		}
	}
	return set, nil
}

func (b *addressBook) flattenAddrGroup(name string, visited map[string]bool) ([]*model.AddressObject, error) {
	if visited[name] {
		return nil, fmt.Errorf("circular dependency detected in address group '%s'", name)
	}
	visited[name] = true
	defer func() {
		delete(visited, name)
	}()

	var results []*model.AddressObject

	// Is it a direct address object?
	if addr, ok := b.AddressObjects[name]; ok {
		results = append(results, addr)
	}

	// Is it an address group?
	if members, ok := b.AddrGrps[name]; ok {
		for _, memberName := range members {
			memberAddrs, err := b.flattenAddrGroup(memberName, visited)
			if err != nil {
				return nil, err
			}
			results = append(results, memberAddrs...)
		}
	}

	return results, nil
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
