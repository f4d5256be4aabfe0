// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import "github.com/dforsi/qdmr/cmd"

func main() {
	cmd.Execute()
}
