package kdb_test

import (
	"fmt"

	kdb "github.com/sv/kdbwire"
)

func ExampleEncode() {
	ints, err := kdb.NewTypedList(kdb.KI, []int32{1, 2})
	if err != nil {
		fmt.Println("Bad value:", err)
		return
	}
	b, err := kdb.Encode(ints)
	if err != nil {
		fmt.Println("Encoding failed:", err)
		return
	}
	fmt.Printf("% x\n", b)
	// Output: 01 00 00 00 16 00 00 00 06 00 02 00 00 00 01 00 00 00 02 00 00 00
}

func ExampleDecode() {
	b, err := kdb.Encode(map[string]interface{}{"sym": "`GOOG", "px": []float64{101.5, 102}})
	if err != nil {
		fmt.Println("Encoding failed:", err)
		return
	}
	res, err := kdb.Decode(b)
	if err != nil {
		fmt.Println("Decoding failed:", err)
		return
	}
	d := res.(kdb.Dict)
	sym, _ := d.Get("sym")
	px, _ := d.Get("px")
	fmt.Println(d.Keys, sym, px)
	// Output: [px sym] GOOG [101.5 102]
}
