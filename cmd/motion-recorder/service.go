// motion-recorder - record video segments around detected motion
//  Copyright (C) 2018, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/TheCacophonyProject/motion-recorder/motion"
)

const (
	dbusName = "org.cacophony.motionrecorder"
	dbusPath = "/org/cacophony/motionrecorder"
)

type service struct {
	snapshots *snapshotter
	params    *motion.Params
}

func startService(snapshots *snapshotter, params *motion.Params) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{
		snapshots: snapshots,
		params:    params,
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")

	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// TakeSnapshot will save the newest frame as a still
func (s *service) TakeSnapshot() *dbus.Error {
	if err := s.snapshots.save(); err != nil {
		return makeDbusError("TakeSnapshot", err)
	}
	return nil
}

// SetMotionParams changes the motion detector settings. They apply from
// the next frame.
func (s *service) SetMotionParams(pixelThreshold int32, sensitivity float64, erosionKernelSize int32) *dbus.Error {
	conf := s.params.Get()
	conf.PixelThreshold = int(pixelThreshold)
	conf.Sensitivity = sensitivity
	conf.ErosionKernelSize = int(erosionKernelSize)
	if err := s.params.Set(conf); err != nil {
		return makeDbusError("SetMotionParams", err)
	}
	return nil
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}
