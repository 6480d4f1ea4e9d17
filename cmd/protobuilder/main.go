// Command protobuilder generates C++ builder classes for protobuf messages.
//
// Usage:
//
//	protobuilder --proto='*+:shop/order.proto' \
//		--header=shop/order_builder.h --source=shop/order_builder.cc
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
