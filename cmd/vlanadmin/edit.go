package main

import (
	"fmt"
	"strconv"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Edits shared by the one-shot commands and the shell. Each one only
// queues changes on sw; committing is up to the caller.

func parseTag(s string) (int, error) {
	tag, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid vlan id %q", s)
	}
	if err := util.ValidateVLANID(tag); err != nil {
		return 0, err
	}
	return tag, nil
}

func lookupVlan(sw *switchmodel.Switch, s string) (*switchmodel.Vlan, error) {
	tag, err := parseTag(s)
	if err != nil {
		return nil, err
	}
	v := sw.VlanByTag(tag)
	if v == nil {
		return nil, fmt.Errorf("%w: vlan %d on %s", util.ErrNotFound, tag, sw.Name())
	}
	return v, nil
}

func lookupPort(sw *switchmodel.Switch, s string) (*switchmodel.Port, error) {
	num, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid port number %q", s)
	}
	p := sw.Port(num)
	if p == nil {
		return nil, fmt.Errorf("%w: port %d (switch has %d ports)", util.ErrNotFound, num, len(sw.Ports()))
	}
	return p, nil
}

func createVlan(sw *switchmodel.Switch, tagArg, name string) error {
	tag, err := parseTag(tagArg)
	if err != nil {
		return err
	}
	v, err := sw.AddVlan(tag)
	if err != nil {
		return err
	}
	v.SetName(name)
	return nil
}

func deleteVlan(sw *switchmodel.Switch, tagArg string) error {
	v, err := lookupVlan(sw, tagArg)
	if err != nil {
		return err
	}
	return sw.DeleteVlan(v)
}

func renameVlan(sw *switchmodel.Switch, tagArg, name string) error {
	v, err := lookupVlan(sw, tagArg)
	if err != nil {
		return err
	}
	v.SetName(name)
	return nil
}

// setMembers sets the membership of every port in portSpec ("1-4,7").
func setMembers(sw *switchmodel.Switch, tagArg, portSpec, membership string) error {
	v, err := lookupVlan(sw, tagArg)
	if err != nil {
		return err
	}
	m, err := switchmodel.ParseMembership(membership)
	if err != nil {
		return err
	}
	ports, err := util.ParsePortList(portSpec, len(sw.Ports()))
	if err != nil {
		return err
	}
	for _, port := range ports {
		if err := v.SetPortMembership(port, m); err != nil {
			return fmt.Errorf("port %d: %w", port, err)
		}
	}
	return nil
}

func describePort(sw *switchmodel.Switch, portArg, text string) error {
	p, err := lookupPort(sw, portArg)
	if err != nil {
		return err
	}
	p.SetDescription(text)
	return nil
}

func setPVID(sw *switchmodel.Switch, portArg, tagArg string) error {
	p, err := lookupPort(sw, portArg)
	if err != nil {
		return err
	}
	tag, err := parseTag(tagArg)
	if err != nil {
		return err
	}
	return p.SetPVID(tag)
}
