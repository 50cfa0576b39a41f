package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"cidrblock/internal/engine"
	"cidrblock/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBParser loads address objects and groups from the firewall
// management database (cfg_address, cfg_address_group).
type MariaDBParser struct {
	addressBook
	db *sql.DB
}

func NewMariaDBParser(dsn string) (*MariaDBParser, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &MariaDBParser{
		addressBook: newAddressBook(),
		db:          db,
	}, nil
}

func (p *MariaDBParser) Close() {
	p.db.Close()
}

func (p *MariaDBParser) Parse() error {
	if err := p.loadAddresses(); err != nil {
		return fmt.Errorf("failed to load addresses: %w", err)
	}
	if err := p.loadAddressGroups(); err != nil {
		return fmt.Errorf("failed to load address groups: %w", err)
	}
	return nil
}

// Blocks returns the CIDR set for the named address group, or for every
// address object when group is empty.
func (p *MariaDBParser) Blocks(group string) (*engine.BlockSet, error) {
	return p.blocks(group)
}

func (p *MariaDBParser) loadAddresses() error {
	rows, err := p.db.Query("SELECT object_name, address_type, subnet, start_ip, end_ip FROM cfg_address")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, addrType string
		var subnet, startIP, endIP sql.NullString
		if err := rows.Scan(&name, &addrType, &subnet, &startIP, &endIP); err != nil {
			return err
		}

		addr := &model.AddressObject{Name: name, Type: addrType}
		switch addrType {
		case "ipmask":
			addr.Subnet = subnet.String
		case "iprange":
			addr.StartIP = startIP.String
			addr.EndIP = endIP.String
		}
		p.AddressObjects[name] = addr
	}
	return rows.Err()
}

func (p *MariaDBParser) loadAddressGroups() error {
	rows, err := p.db.Query("SELECT group_name, members FROM cfg_address_group")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var groupName, membersJSON string
		if err := rows.Scan(&groupName, &membersJSON); err != nil {
			return err
		}
		var members []string
		if err := json.Unmarshal([]byte(membersJSON), &members); err != nil {
			return fmt.Errorf("group '%s': invalid members: %w", groupName, err)
		}
		p.AddrGrps[groupName] = members
	}
	return rows.Err()
}
