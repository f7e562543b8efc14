/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package regrid

import "github.com/ctessum/sparse"

// MaskedArray pairs an array of values with a per-element validity mask.
// Mask is indexed in the array's flat row-major order; a true entry means
// the corresponding value is missing and Data holds zero there.
type MaskedArray struct {
	Data *sparse.DenseArray
	Mask []bool
}

// Masked reports whether the element at the given multidimensional index
// is missing.
func (m *MaskedArray) Masked(index ...int) bool {
	return m.Mask[m.Data.Index1d(index...)]
}

// AnyMasked reports whether any element is missing.
func (m *MaskedArray) AnyMasked() bool {
	for _, b := range m.Mask {
		if b {
			return true
		}
	}
	return false
}
