/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "errors"

// Error definitions shared across packages.
var (
	ErrFaceNotFound  = errors.New("face not found")
	ErrFaceExists    = errors.New("face already registered")
	ErrInvalidConfig = errors.New("invalid configuration")
)
