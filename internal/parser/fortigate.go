package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"cidrblock/internal/engine"
	"cidrblock/internal/model"
	"cidrblock/internal/utils"
)

// FortiGateParser reads address objects and address groups from a FortiGate
// CLI configuration export.
type FortiGateParser struct {
	addressBook
	scanner *bufio.Scanner
}

func NewFortiGateParser(reader io.Reader) *FortiGateParser {
	return &FortiGateParser{
		addressBook: newAddressBook(),
		scanner:     bufio.NewScanner(reader),
	}
}

func (p *FortiGateParser) Parse() error {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		switch {
		case strings.HasPrefix(line, "config firewall address6"), strings.HasPrefix(line, "config firewall addrgrp6"):
			// IPv6 objects are not blocked.
			if err := p.skipSection(); err != nil {
				return fmt.Errorf("failed to skip %s: %w", line, err)
			}
		case strings.HasPrefix(line, "config firewall addrgrp"):
			if err := p.parseAddrGrpConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall addrgrp config: %w", err)
			}
		case strings.HasPrefix(line, "config firewall address"):
			if err := p.parseAddressConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall address config: %w", err)
			}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Blocks returns the CIDR set for the named address group, or for every
// address object when group is empty.
func (p *FortiGateParser) Blocks(group string) (*engine.BlockSet, error) {
	return p.blocks(group)
}

func (p *FortiGateParser) skipSection() error {
	for p.scanner.Scan() {
		if strings.TrimSpace(p.scanner.Text()) == "end" {
			return nil
		}
	}
	return io.ErrUnexpectedEOF
}

func (p *FortiGateParser) parseAddressConfig() error {
	var currentObject *model.AddressObject
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) < 2 {
				continue
			}
			name := unquote(parts[1])
			currentObject = &model.AddressObject{Name: name, Type: "ipmask"}
			p.AddressObjects[name] = currentObject
		case "set":
			if currentObject == nil || len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "type":
				currentObject.Type = parts[2]
			case "subnet":
				// e.g., set subnet 1.1.1.0 255.255.255.0 or set subnet 1.1.1.0/24
				if strings.Contains(parts[2], "/") {
					currentObject.Subnet = parts[2]
					continue
				}
				if len(parts) < 4 {
					continue
				}
				prefixLen, err := utils.MaskPrefix(parts[3])
				if err == nil {
					currentObject.Subnet = fmt.Sprintf("%s/%d", parts[2], prefixLen)
				}
			case "start-ip":
				currentObject.StartIP = parts[2]
			case "end-ip":
				currentObject.EndIP = parts[2]
			case "fqdn":
				currentObject.FQDN = unquote(parts[2])
			}
		case "next":
			currentObject = nil
		}
	}
	return io.ErrUnexpectedEOF
}

func (p *FortiGateParser) parseAddrGrpConfig() error {
	var currentGroup string
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) > 1 {
				currentGroup = unquote(parts[1])
			}
		case "set":
			if currentGroup != "" && len(parts) > 2 && parts[1] == "member" {
				var members []string
				for _, member := range parts[2:] {
					members = append(members, unquote(member))
				}
				p.AddrGrps[currentGroup] = members
			}
		case "next":
			currentGroup = ""
		}
	}
	return io.ErrUnexpectedEOF
}
