/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import "regexp"

var (
	numberRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	integerRe = regexp.MustCompile(`^\d+$`)
	upsRe     = regexp.MustCompile(`^-?\d+(\.\d+)?ups$`)
	degRe     = regexp.MustCompile(`^-?\d+(\.\d+)?deg$`)
)

func keyword(name, desc string) Argument {
	return Argument{Name: name, Description: desc, Type: Keyword}
}

func off(desc string) Argument {
	return Argument{Name: "off", Description: desc, Type: Keyword, Off: true}
}

func number(name, desc string) Argument {
	return Argument{Name: name, Description: desc, Type: Number, Matcher: numberRe, Placeholder: true}
}

func ticks(desc string) Argument {
	return Argument{Name: "ticks", Description: desc, Type: Number, Matcher: integerRe, Placeholder: true, Duration: true}
}

// Builtin returns the catalog of tools understood by the game plugin.
func Builtin() *Catalog {
	return NewCatalog(
		Tool{
			Name:        "setang",
			Description: "Rotates the view towards the given pitch and yaw, either instantly or over a number of ticks.",
			Arguments: []Argument{
				number("pitch", "Target pitch in degrees."),
				number("yaw", "Target yaw in degrees."),
				ticks("Number of ticks the rotation takes."),
				keyword("linear", "Interpolate the rotation linearly."),
				keyword("sine", "Ease the rotation with a sine curve."),
				keyword("cubic", "Ease the rotation with a cubic curve."),
				keyword("exp", "Ease the rotation exponentially."),
			},
		},
		Tool{
			Name:        "autoaim",
			Description: "Aims at a point in the world. Once the aim is reached the tool keeps tracking the point until switched off.",
			Arguments: []Argument{
				number("x", "X coordinate of the target."),
				number("y", "Y coordinate of the target."),
				number("z", "Z coordinate of the target."),
				ticks("Number of ticks used to reach the target."),
				off("Stops aiming."),
			},
			Continues: true,
		},
		Tool{
			Name:        "strafe",
			Description: "Automatic strafing towards the current view or movement direction.",
			Arguments: []Argument{
				keyword("vec", "Strafe to gain velocity in the movement direction."),
				keyword("ang", "Strafe so the view follows the velocity."),
				keyword("veccam", "Strafe in the movement direction and turn the camera with it."),
				keyword("max", "Accelerate as fast as possible."),
				keyword("keep", "Keep the current speed."),
				{Name: "ups", Description: "Target speed in units per second.", Type: Unit, Matcher: upsRe, Unit: "ups"},
				{Name: "deg", Description: "Target direction in degrees.", Type: Unit, Matcher: degRe, Unit: "deg"},
				keyword("forward", "Strafe towards the view direction."),
				keyword("forwardvel", "Strafe towards the current velocity direction."),
				keyword("left", "Strafe turning left."),
				keyword("right", "Strafe turning right."),
				keyword("nopitchlock", "Do not lock the pitch while strafing."),
				off("Stops strafing."),
			},
			Persistent: true,
		},
		Tool{
			Name:        "autojump",
			Description: "Jumps automatically whenever the player touches the ground.",
			Arguments: []Argument{
				keyword("on", "Enables automatic jumping."),
				off("Disables automatic jumping."),
			},
			Persistent: true,
		},
		Tool{
			Name:        "absmov",
			Description: "Moves in an absolute world direction regardless of the view.",
			Arguments: []Argument{
				number("angle", "Movement direction in degrees."),
				number("scale", "Analog scale of the movement, 0 to 1."),
				off("Stops absolute movement."),
			},
			Persistent: true,
		},
		Tool{
			Name:        "decel",
			Description: "Decelerates the player down to the given speed.",
			Arguments: []Argument{
				{Name: "ups", Description: "Target speed in units per second.", Type: Unit, Matcher: upsRe, Unit: "ups"},
				off("Stops decelerating."),
			},
			Persistent: true,
		},
	)
}

// StartType is one of the ways a script can begin playback.
type StartType struct {
	Name        string
	Description string
	// Arguments is the number of words expected after the type.
	Arguments int
}

// StartTypes lists the accepted arguments of the start statement.
var StartTypes = []StartType{
	{Name: "now", Description: "Starts the TAS immediately."},
	{Name: "save", Description: "Loads the given save before starting.", Arguments: 1},
	{Name: "map", Description: "Loads the given map before starting.", Arguments: 1},
	{Name: "cm", Description: "Loads the given map in challenge mode before starting.", Arguments: 1},
	{Name: "next", Description: "Starts on the next load, optionally followed by another start type.", Arguments: -1},
}

// LookupStartType returns the start type with the given name.
func LookupStartType(name string) (StartType, bool) {
	for _, st := range StartTypes {
		if st.Name == name {
			return st, true
		}
	}
	return StartType{}, false
}
