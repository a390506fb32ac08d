// 语料导入工具：校验 GeoJSON 语料并整体写入 PostgreSQL，供 CORPUS_SOURCE=postgres 的服务实例加载
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
