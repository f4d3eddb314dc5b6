//go:build rp2350

package main

const boardName = "pico2"
