package plan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Instance is a fully parsed desk-planning problem. All fields are treated
// as read-only once loaded; the pipeline never mutates them. Days are
// chronological in input order.
type Instance struct {
	Employees []string
	Desks     []string
	Days      []string
	Groups    []string
	Zones     []string

	PreferredDays   map[string][]string `mapstructure:"Days_E"`
	CompatibleDesks map[string][]string `mapstructure:"Desks_E"`
	GroupMembers    map[string][]string `mapstructure:"Employees_G"`
	ZoneDesks       map[string][]string `mapstructure:"Desks_Z"`
}

// LoadInstance reads an instance JSON file.
func LoadInstance(file string) (Instance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Instance{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return Instance{}, err
	}

	var instance Instance
	if err := mapstructure.Decode(raw, &instance); err != nil {
		return Instance{}, err
	}
	return instance, nil
}

// DeskZones inverts the zone relation into desk -> zone.
func (in Instance) DeskZones() map[string]string {
	result := make(map[string]string)
	for zone, desks := range in.ZoneDesks {
		for _, desk := range desks {
			result[desk] = zone
		}
	}
	return result
}

// EmployeeGroups inverts the membership relation into employee -> group.
func (in Instance) EmployeeGroups() map[string]string {
	result := make(map[string]string)
	for group, members := range in.GroupMembers {
		for _, employee := range members {
			result[employee] = group
		}
	}
	return result
}

// Validate rejects instances whose relations reference unknown identifiers
// or violate the one-group-per-employee / one-zone-per-desk structure.
func (in Instance) Validate() error {
	employees := lo.SliceToMap(in.Employees, func(e string) (string, struct{}) { return e, struct{}{} })
	desks := lo.SliceToMap(in.Desks, func(d string) (string, struct{}) { return d, struct{}{} })
	days := lo.SliceToMap(in.Days, func(k string) (string, struct{}) { return k, struct{}{} })

	for employee, preferred := range in.PreferredDays {
		if _, ok := employees[employee]; !ok {
			return fmt.Errorf("%w: preferred days for unknown employee %q", ErrInvalidInstance, employee)
		}
		for _, day := range preferred {
			if _, ok := days[day]; !ok {
				return fmt.Errorf("%w: employee %q prefers unknown day %q", ErrInvalidInstance, employee, day)
			}
		}
	}
	for employee, compatible := range in.CompatibleDesks {
		if _, ok := employees[employee]; !ok {
			return fmt.Errorf("%w: compatible desks for unknown employee %q", ErrInvalidInstance, employee)
		}
		for _, desk := range compatible {
			if _, ok := desks[desk]; !ok {
				return fmt.Errorf("%w: employee %q is compatible with unknown desk %q", ErrInvalidInstance, employee, desk)
			}
		}
	}

	seenMember := make(map[string]string)
	for group, members := range in.GroupMembers {
		if !lo.Contains(in.Groups, group) {
			return fmt.Errorf("%w: members listed for unknown group %q", ErrInvalidInstance, group)
		}
		for _, employee := range members {
			if _, ok := employees[employee]; !ok {
				return fmt.Errorf("%w: group %q contains unknown employee %q", ErrInvalidInstance, group, employee)
			}
			if other, ok := seenMember[employee]; ok && other != group {
				return fmt.Errorf("%w: employee %q belongs to both %q and %q", ErrInvalidInstance, employee, other, group)
			}
			seenMember[employee] = group
		}
	}

	seenDesk := make(map[string]string)
	for zone, zoneDesks := range in.ZoneDesks {
		if !lo.Contains(in.Zones, zone) {
			return fmt.Errorf("%w: desks listed for unknown zone %q", ErrInvalidInstance, zone)
		}
		for _, desk := range zoneDesks {
			if _, ok := desks[desk]; !ok {
				return fmt.Errorf("%w: zone %q contains unknown desk %q", ErrInvalidInstance, zone, desk)
			}
			if other, ok := seenDesk[desk]; ok && other != zone {
				return fmt.Errorf("%w: desk %q belongs to both %q and %q", ErrInvalidInstance, desk, other, zone)
			}
			seenDesk[desk] = zone
		}
	}
	return nil
}
