// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2014-2015 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package i18n wraps user-facing strings the way snapd's i18n package
// does, so call sites read the same whether or not a translation
// catalog is bound. This updater ships no message catalog, so G/NG
// degrade to straight pass-through, the same fallback snapd's own
// i18n package takes when no .mo file is found for the active locale.
package i18n

// TEXTDOMAIN names the gettext catalog this package would bind, kept
// for parity with snapd's own i18n package even though no catalog is
// loaded here.
var TEXTDOMAIN = "nepos-updater"

// G marks and returns msg untranslated.
func G(msg string) string {
	return msg
}

// NG marks msg1/msg2 for pluralization and returns msg1 for n == 1,
// msg2 otherwise.
func NG(msg1, msg2 string, n int) string {
	if n == 1 {
		return msg1
	}
	return msg2
}
