package wellknown

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"cidrblock/internal/model"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

type ServiceEntry struct {
	Protocol model.Protocol
	Port     int
}

var serviceRegistry map[string][]ServiceEntry

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue // Skip if port is not a valid number
		}

		register(record[1], ServiceEntry{Protocol: model.TCP, Port: port})
		register(record[2], ServiceEntry{Protocol: model.UDP, Port: port})
	}
}

func register(name string, entry ServiceEntry) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || name == "N/A" {
		return
	}
	serviceRegistry[name] = append(serviceRegistry[name], entry)
	// Add common alias for DNS
	if name == "DOMAIN" {
		serviceRegistry["DNS"] = append(serviceRegistry["DNS"], entry)
	}
}

// GetService returns the port and protocol for a well-known service name.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// ParseService resolves "ssh", "22/tcp" or "22" into a single deny-rule scope.
// An empty string means any port. Names registered for both protocols
// resolve to their TCP entry.
func ParseService(s string) (model.Service, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Service{}, nil
	}

	if entries, ok := GetService(s); ok {
		best := entries[0]
		for _, e := range entries {
			if e.Protocol == model.TCP {
				best = e
				break
			}
		}
		return model.Service{Name: strings.ToLower(s), Port: best.Port, Protocol: best.Protocol}, nil
	}

	portStr, protoStr, hasProto := strings.Cut(s, "/")
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return model.Service{}, fmt.Errorf("unknown service %q", s)
	}
	svc := model.Service{Name: s, Port: port}
	if hasProto {
		svc.Protocol = model.Protocol(strings.ToLower(protoStr))
		if svc.Protocol != model.TCP && svc.Protocol != model.UDP {
			return model.Service{}, fmt.Errorf("unknown protocol %q in service %q", protoStr, s)
		}
	}
	return svc, nil
}
