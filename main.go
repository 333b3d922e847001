// Public domain.

package main

import "github.com/vivekvenkris/CandyWeb/internal/cwprog"

func main() {
	cwprog.Main()
}
