/*
 Licensed to the Apache Software Foundation (ASF) under one
 or more contributor license agreements.  See the NOTICE file
 distributed with this work for additional information
 regarding copyright ownership.  The ASF licenses this file
 to you under the Apache License, Version 2.0 (the
 "License"); you may not use this file except in compliance
 with the License.  You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package common

// NormalizeUp rounds val up to the nearest multiple of unit.
// A non positive unit leaves the value untouched.
func NormalizeUp(val, unit int64) int64 {
	if unit <= 0 {
		return val
	}
	n := val / unit
	if val%unit != 0 {
		n++
	}
	return n * unit
}

// NormalizeDown rounds val down to the nearest multiple of unit.
// Values smaller than one unit are returned unchanged, never rounded to zero.
func NormalizeDown(val, unit int64) int64 {
	if unit <= 0 {
		return val
	}
	n := val / unit
	if n < 1 {
		return val
	}
	return n * unit
}

// ClampPercent bounds a percentage into the [low, 100] range.
func ClampPercent(pct, low int64) int64 {
	if low > 100 {
		low = 100
	}
	if pct < low {
		return low
	}
	if pct > 100 {
		return 100
	}
	return pct
}
